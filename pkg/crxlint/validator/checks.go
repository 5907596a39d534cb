package validator

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jamesainslie/crxlint/pkg/crxlint/manifest"
	"github.com/jamesainslie/crxlint/pkg/crxlint/probe"
)

// Check identifies one rule of the fixed rule set. Checks run in the order
// of their values.
type Check int

// The rule set, in execution order.
const (
	CheckManifestVersion Check = iota
	CheckRequiredFields
	CheckIcons
	CheckBackground
	CheckPermissions
	CheckContentScripts
	CheckWebAccessibleResources
	CheckContentSecurityPolicy

	numChecks
)

// Checks returns every check in execution order.
func Checks() []Check {
	out := make([]Check, 0, numChecks)
	for c := Check(0); c < numChecks; c++ {
		out = append(out, c)
	}
	return out
}

// String returns the check name.
func (c Check) String() string {
	switch c {
	case CheckManifestVersion:
		return "manifest-version"
	case CheckRequiredFields:
		return "required-fields"
	case CheckIcons:
		return "icons"
	case CheckBackground:
		return "background"
	case CheckPermissions:
		return "permissions"
	case CheckContentScripts:
		return "content-scripts"
	case CheckWebAccessibleResources:
		return "web-accessible-resources"
	case CheckContentSecurityPolicy:
		return "content-security-policy"
	default:
		return fmt.Sprintf("check(%d)", int(c))
	}
}

// checkFunc is a pure rule: it reads the document and the probe and
// returns its findings.
type checkFunc func(doc *manifest.Document, p probe.Prober) []Finding

var checkFuncs = [numChecks]checkFunc{
	CheckManifestVersion:        checkManifestVersion,
	CheckRequiredFields:         checkRequiredFields,
	CheckIcons:                  checkIcons,
	CheckBackground:             checkBackground,
	CheckPermissions:            checkPermissions,
	CheckContentScripts:         checkContentScripts,
	CheckWebAccessibleResources: checkWebAccessibleResources,
	CheckContentSecurityPolicy:  checkContentSecurityPolicy,
}

// Run evaluates the check against doc, resolving files through p.
func (c Check) Run(doc *manifest.Document, p probe.Prober) []Finding {
	if c < 0 || c >= numChecks {
		return nil
	}
	return checkFuncs[c](doc, p)
}

// Limits and fixed vocabularies used by the checks.
const (
	MaxNameLength = 75

	// optionalPermissionThreshold is the plain permission count above which
	// optional_permissions are recommended.
	optionalPermissionThreshold = 5
)

var (
	versionPattern = regexp.MustCompile(`^\d+\.\d+(\.\d+)?(\.\d+)?$`)

	// RecommendedIconSizes are the icon sizes every extension should ship.
	RecommendedIconSizes = []string{"16", "32", "48", "128"}

	// UnsafeCSPDirectives are flagged when found in the extension page policy.
	UnsafeCSPDirectives = []string{"unsafe-eval", "unsafe-inline", "unsafe-hashes"}
)

func checkManifestVersion(doc *manifest.Document, _ probe.Prober) []Finding {
	if doc.ManifestVersion != nil && *doc.ManifestVersion == manifest.SupportedVersion {
		return nil
	}

	found := "missing"
	if raw, ok := doc.Raw("manifest_version"); ok {
		found = truncateRaw(raw)
	} else if doc.ManifestVersion != nil {
		found = fmt.Sprintf("%d", *doc.ManifestVersion)
	}
	return []Finding{newFinding(SeverityError, "manifest_version",
		"manifest_version must be %d (found: %s)", manifest.SupportedVersion, found)}
}

func checkRequiredFields(doc *manifest.Document, _ probe.Prober) []Finding {
	var out []Finding

	nameMissing := doc.Name == "" && !truthyInvalid(doc, "name")
	versionMissing := doc.Version == "" && !truthyInvalid(doc, "version")

	if nameMissing {
		out = append(out, newFinding(SeverityError, "name", `Required field "name" is missing`))
	}
	if versionMissing {
		out = append(out, newFinding(SeverityError, "version", `Required field "version" is missing`))
	}

	if truthyInvalid(doc, "name") {
		raw, _ := doc.Raw("name")
		out = append(out, newFinding(SeverityError, "name", `Field "name" must be a string (found: %s)`, truncateRaw(raw)))
	}
	if utf8.RuneCountInString(doc.Name) > MaxNameLength {
		out = append(out, newFinding(SeverityError, "name",
			"Name must be %d characters or less", MaxNameLength))
	}

	// A non-string version never has the dotted numeric form.
	if !versionMissing && (doc.Invalid("version") || !versionPattern.MatchString(doc.Version)) {
		out = append(out, newFinding(SeverityWarning, "version",
			"Version should follow semantic versioning (e.g., 1.0.0)"))
	}

	return out
}

// truthyInvalid reports a wrongly typed key whose value is not null, false,
// zero or empty. Falsy values count as missing.
func truthyInvalid(doc *manifest.Document, key string) bool {
	if !doc.Invalid(key) {
		return false
	}
	raw, _ := doc.Raw(key)
	return !manifest.Falsy(raw)
}

// typeFinding reports a top-level key whose value has the wrong JSON type.
func typeFinding(doc *manifest.Document, key, want string) Finding {
	raw, _ := doc.Raw(key)
	return newFinding(SeverityError, key, `Field "%s" must be %s (found: %s)`, key, want, truncateRaw(raw))
}

// maxRawLength bounds how much of a wrongly typed value a message quotes.
const maxRawLength = 40

func truncateRaw(raw []byte) string {
	if utf8.RuneCount(raw) <= maxRawLength {
		return string(raw)
	}
	return string([]rune(string(raw))[:maxRawLength]) + "..."
}

func checkIcons(doc *manifest.Document, p probe.Prober) []Finding {
	if doc.Invalid("icons") {
		return []Finding{typeFinding(doc, "icons", "an object mapping sizes to file paths")}
	}
	if doc.Icons == nil {
		return []Finding{newFinding(SeverityWarning, "icons",
			"Icons are recommended for better user experience")}
	}

	var out []Finding
	for _, size := range RecommendedIconSizes {
		field := "icons." + size
		path := doc.Icons[size]
		switch {
		case path == "":
			out = append(out, newFinding(SeverityWarning, field, "Icon size %sx%s is recommended", size, size))
		case !p.Exists(path):
			out = append(out, newFinding(SeverityError, field, "Icon file not found: %s", path))
		}
	}
	return out
}

func checkBackground(doc *manifest.Document, p probe.Prober) []Finding {
	if doc.Invalid("background") {
		return []Finding{typeFinding(doc, "background", "an object")}
	}

	bg := doc.Background
	if bg == nil {
		return []Finding{newFinding(SeverityInfo, "background", "No background service worker defined")}
	}

	if !bg.HasServiceWorker() {
		return []Finding{newFinding(SeverityError, "background",
			"Manifest V3 requires 'service_worker' in background field")}
	}
	if bg.Invalid("service_worker") {
		return []Finding{newFinding(SeverityError, "background.service_worker",
			"Service worker must be a file path string")}
	}

	// A null service_worker is present but empty and names no file.
	if bg.ServiceWorker == nil {
		return nil
	}
	worker := *bg.ServiceWorker
	if worker != "" && !p.Exists(worker) {
		return []Finding{newFinding(SeverityError, "background.service_worker",
			"Service worker file not found: %s", worker)}
	}
	return nil
}

func checkPermissions(doc *manifest.Document, _ probe.Prober) []Finding {
	var out []Finding

	for _, key := range []string{"permissions", "host_permissions", "optional_permissions"} {
		if doc.Invalid(key) {
			out = append(out, typeFinding(doc, key, "an array of strings"))
		}
	}

	for _, perm := range doc.Permissions {
		if manifest.IsHostPattern(perm) {
			out = append(out, newFinding(SeverityError, "permissions",
				`Host permission "%s" should be in "host_permissions", not "permissions"`, perm))
		}
	}

	for _, perm := range doc.HostPermissions {
		if manifest.IsBroadHostPattern(perm) {
			out = append(out, newFinding(SeverityWarning, "host_permissions",
				`Overly broad host permission: "%s". Consider narrowing scope.`, perm))
		}
	}

	if len(doc.Permissions) > optionalPermissionThreshold && len(doc.OptionalPermissions) == 0 {
		out = append(out, newFinding(SeverityInfo, "permissions",
			"Consider using optional_permissions for non-critical features"))
	}

	return out
}

func checkContentScripts(doc *manifest.Document, p probe.Prober) []Finding {
	if doc.Invalid("content_scripts") {
		return []Finding{typeFinding(doc, "content_scripts", "an array of content script objects")}
	}

	var out []Finding

	for i, cs := range doc.ContentScripts {
		prefix := fmt.Sprintf("content_scripts[%d]", i)

		if len(cs.Matches) == 0 {
			out = append(out, newFinding(SeverityError, prefix+".matches",
				"Content script %d must have at least one match pattern", i))
		}
		for _, js := range cs.JS {
			if !p.Exists(js) {
				out = append(out, newFinding(SeverityError, prefix+".js", "Content script file not found: %s", js))
			}
		}
		for _, css := range cs.CSS {
			if !p.Exists(css) {
				out = append(out, newFinding(SeverityError, prefix+".css", "Content script CSS file not found: %s", css))
			}
		}
	}

	return out
}

func checkWebAccessibleResources(doc *manifest.Document, _ probe.Prober) []Finding {
	if doc.Invalid("web_accessible_resources") {
		return []Finding{typeFinding(doc, "web_accessible_resources", "an array of resource objects")}
	}

	var out []Finding

	for i, war := range doc.WebAccessibleResources {
		prefix := fmt.Sprintf("web_accessible_resources[%d]", i)

		if len(war.Resources) == 0 {
			out = append(out, newFinding(SeverityError, prefix+".resources",
				"web_accessible_resources must have at least one resource"))
		}
		if len(war.Matches) == 0 {
			out = append(out, newFinding(SeverityError, prefix+".matches",
				"web_accessible_resources must have at least one match pattern"))
		}
	}

	return out
}

func checkContentSecurityPolicy(doc *manifest.Document, _ probe.Prober) []Finding {
	if doc.Invalid("content_security_policy") {
		return []Finding{typeFinding(doc, "content_security_policy", "an object")}
	}

	csp := doc.ContentSecurityPolicy
	if csp == nil || csp.ExtensionPages == nil || *csp.ExtensionPages == "" {
		return nil
	}

	var out []Finding
	for _, directive := range UnsafeCSPDirectives {
		if strings.Contains(*csp.ExtensionPages, directive) {
			out = append(out, newFinding(SeverityWarning, "content_security_policy.extension_pages",
				"CSP contains unsafe directive: %s", directive))
		}
	}
	return out
}
