package civdoc

// Site is one entry in the fixed registry of known municipal sites. The
// numeric ID doubles as the multisite blog directory number on disk.
type Site struct {
	ID   int
	Name string
}

// SiteRegistry is the immutable table of sites scanned by site-scoped
// connectors. Inject it at startup; do not treat it as a mutable global.
type SiteRegistry []Site

// DefaultSites returns the registry of the 11 known sites.
func DefaultSites() SiteRegistry {
	return SiteRegistry{
		{ID: 1, Name: "citoyen"},
		{ID: 2, Name: "administration"},
		{ID: 3, Name: "economie"},
		{ID: 4, Name: "tourisme"},
		{ID: 5, Name: "sport"},
		{ID: 6, Name: "sante"},
		{ID: 7, Name: "social"},
		{ID: 8, Name: "marchois"},
		{ID: 11, Name: "culture"},
		{ID: 12, Name: "roman"},
		{ID: 14, Name: "enfance"},
	}
}

// IDByName returns the site ID for a theme name.
// Returns ENOTFOUND for names outside the registry.
func (r SiteRegistry) IDByName(name string) (int, error) {
	for _, s := range r {
		if s.Name == name {
			return s.ID, nil
		}
	}
	return 0, Errorf(ENOTFOUND, "unknown site %q", name)
}

// Names returns all site names in registry order.
func (r SiteRegistry) Names() []string {
	names := make([]string, 0, len(r))
	for _, s := range r {
		names = append(names, s.Name)
	}
	return names
}
