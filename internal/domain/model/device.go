package model

import "slices"

var iPhoneModels = []string{
	"iPhone 7", "iPhone 7 Plus",
	"iPhone 8", "iPhone 8 Plus",
	"iPhone X", "iPhone XR", "iPhone XS", "iPhone XS Max",
	"iPhone 11", "iPhone 11 Pro", "iPhone 11 Pro Max",
	"iPhone SE (2nd generation)",
	"iPhone 12", "iPhone 12 mini", "iPhone 12 Pro", "iPhone 12 Pro Max",
	"iPhone 13", "iPhone 13 mini", "iPhone 13 Pro", "iPhone 13 Pro Max",
	"iPhone SE (3rd generation)",
	"iPhone 14", "iPhone 14 Plus", "iPhone 14 Pro", "iPhone 14 Pro Max",
	"iPhone 15", "iPhone 15 Plus", "iPhone 15 Pro", "iPhone 15 Pro Max",
}

// IPhoneModels returns the device models offered on the iOS login form.
func IPhoneModels() []string {
	return slices.Clone(iPhoneModels)
}

func IsKnownIPhoneModel(name string) bool {
	return slices.Contains(iPhoneModels, name)
}
