package domain

import "slices"

// RegionGlobal is the region label of the all-departments block.
const RegionGlobal = "Global"

// RegionGlobalLabel is the Chinese label accepted for RegionGlobal.
const RegionGlobalLabel = "全球"

// Context carries the parameters of one computation run.
type Context struct {
	Period                  int      // target accounting period, YYYYMM
	TargetBusinessAttribute string   // business attribute counted as country BD
	Countries               []string // country departments, in output order
}

// Regions returns Global followed by the countries in list order.
func (c Context) Regions() []string {
	regions := make([]string, 0, len(c.Countries)+1)
	regions = append(regions, RegionGlobal)
	return append(regions, c.Countries...)
}

// HasCountry reports whether code is one of the configured countries.
func (c Context) HasCountry(code string) bool {
	return slices.Contains(c.Countries, code)
}

// IsKnownRegion reports whether region is Global or a configured country.
func (c Context) IsKnownRegion(region string) bool {
	return region == RegionGlobal || c.HasCountry(region)
}

// NormalizeRegion maps the legacy Global label onto RegionGlobal.
func NormalizeRegion(region string) string {
	if region == RegionGlobalLabel {
		return RegionGlobal
	}
	return region
}

// IsValidDepartment checks department against the closed set
// of configured countries plus AD and OTHER.
func (c Context) IsValidDepartment(department string) bool {
	return department == DepartmentAD || department == DepartmentOther || c.HasCountry(department)
}
