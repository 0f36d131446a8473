package extract

import (
	"regexp"
	"sort"
	"sync"
)

const (
	SourceWeWorkRemotely = "WeWorkRemotely"
	SourceRemoteOK       = "RemoteOK"
)

// NewWeWorkRemotely returns the extractor for weworkremotely.com category listings
func NewWeWorkRemotely() *Board {
	return &Board{
		Name: SourceWeWorkRemotely,
		StartPaths: []string{
			"/categories/remote-programming-jobs",
			"/categories/remote-devops-sysadmin-jobs",
			"/categories/remote-design-jobs",
			"/categories/remote-marketing-jobs",
		},
		DetailLinkSelector: "li.feature a[href]",
		DetailPattern:      regexp.MustCompile(`/remote-jobs/`),
		NextSelectors:      DefaultNextSelectors,
		ExternalIDPatterns: []*regexp.Regexp{regexp.MustCompile(`/remote-jobs/(\d+)/`)},
		TitleSelectors:     []string{"h1.page-title", ".listing-header h2"},
		CompanySelectors:   []string{".company h2 a", ".listing-header .company"},
		DescriptionSelectors: []string{
			".listing-container .listing-container-content",
			".listing .listing-description",
			"#job-listing-show .listing-description",
		},
		LocationSelectors:   []string{".listing-header .location"},
		SalarySelectors:     []string{".listing-header .salary", ".compensation"},
		DateSelectors:       []string{".listing-header time", ".listing-header .listing-date"},
		BreadcrumbSelector:  ".breadcrumbs a",
		CompanyURLSelectors: []string{".company h2 a", ".listing-header .company a"},
		DefaultLocation:     "Remote",
		TagExclusions:       []string{"weworkremotely", "we work remotely", "home"},
	}
}

// NewRemoteOK returns the extractor for remoteok.com listings
func NewRemoteOK() *Board {
	return &Board{
		Name:               SourceRemoteOK,
		StartPaths:         []string{"/remote-dev-jobs"},
		DetailLinkSelector: "tr.job a[href], a.preventLink[href]",
		DetailPattern:      regexp.MustCompile(`/remote-jobs/`),
		NextSelectors:      DefaultNextSelectors,
		ExternalIDPatterns: []*regexp.Regexp{
			regexp.MustCompile(`/remote-jobs/(\d+)(?:[/?#]|$)`),
			regexp.MustCompile(`-(\d+)/?(?:[?#]|$)`),
		},
		TitleSelectors:       []string{"h1", ".company_and_position h2"},
		CompanySelectors:     []string{".company_and_position h3", ".companyLink h3"},
		DescriptionSelectors: []string{".description", ".expandContents"},
		LocationSelectors:    []string{".location"},
		SalarySelectors:      []string{".salary"},
		DateSelectors:        []string{"time"},
		TagSelector:          ".tags .tag h3",
		DefaultLocation:      "Remote",
		TagExclusions:        []string{"remoteok", "remote ok"},
	}
}

// Registry maps source names to extractors
type Registry struct {
	mu         sync.RWMutex
	extractors map[string]Extractor
}

// NewRegistry returns a registry holding the given extractors
func NewRegistry(extractors ...Extractor) *Registry {
	r := &Registry{extractors: make(map[string]Extractor)}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// DefaultRegistry holds every built-in board
func DefaultRegistry() *Registry {
	return NewRegistry(NewWeWorkRemotely(), NewRemoteOK())
}

// Register adds or replaces the extractor for e.Source()
func (r *Registry) Register(e Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors[e.Source()] = e
}

// Lookup returns the extractor for a source name
func (r *Registry) Lookup(source string) (Extractor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.extractors[source]
	return e, ok
}

// Names lists the registered source names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.extractors))
	for name := range r.extractors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
