package capability

import (
	"maps"
	"slices"
)

// permissions maps capability ids to the permission each one requires.
// Namespaces that need no permission, or are not tracked, are absent.
var permissions = map[string]string{
	"chrome.tabs":                  "tabs",
	"chrome.storage":               "storage",
	"chrome.bookmarks":             "bookmarks",
	"chrome.history":               "history",
	"chrome.cookies":               "cookies",
	"chrome.webRequest":            "webRequest",
	"chrome.webNavigation":         "webNavigation",
	"chrome.scripting":             "scripting",
	"chrome.downloads":             "downloads",
	"chrome.notifications":         "notifications",
	"chrome.contextMenus":          "contextMenus",
	"chrome.identity":              "identity",
	"chrome.alarms":                "alarms",
	"chrome.declarativeNetRequest": "declarativeNetRequest",
}

// Permission returns the permission required by capability id. The boolean
// is false for ids outside the table.
func Permission(id string) (string, bool) {
	perm, ok := permissions[id]
	return perm, ok
}

// Capabilities returns every mapped capability id, sorted.
func Capabilities() []string {
	return slices.Sorted(maps.Keys(permissions))
}
