package navigation

import "sync"

// Visit is one recorded navigation.
type Visit struct {
	// URL is the navigation target; empty for Back.
	URL  string `json:"url,omitempty" yaml:"url,omitempty"`
	Back bool   `json:"back,omitempty" yaml:"back,omitempty"`
}

// String returns the URL, or "back".
func (v Visit) String() string {
	if v.Back {
		return "back"
	}
	return v.URL
}

// Recorder is a Navigator that records every navigation.
//
// Thread-safety: safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	visits []Visit
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Navigate implements Navigator.
func (r *Recorder) Navigate(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visits = append(r.visits, Visit{URL: url})
}

// Back implements Navigator.
func (r *Recorder) Back() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visits = append(r.visits, Visit{Back: true})
}

// Visits returns every recorded navigation in order.
func (r *Recorder) Visits() []Visit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Visit(nil), r.visits...)
}

// Strings returns the recorded navigations as strings.
func (r *Recorder) Strings() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.visits))
	for i, v := range r.visits {
		out[i] = v.String()
	}
	return out
}

// Funcs adapts a pair of functions to a Navigator. Nil functions are skipped.
type Funcs struct {
	NavigateFunc func(url string)
	BackFunc     func()
}

// Navigate implements Navigator.
func (f Funcs) Navigate(url string) {
	if f.NavigateFunc != nil {
		f.NavigateFunc(url)
	}
}

// Back implements Navigator.
func (f Funcs) Back() {
	if f.BackFunc != nil {
		f.BackFunc()
	}
}

// Multi returns a Navigator forwarding to every nav in order.
func Multi(navs ...Navigator) Navigator {
	return multi(navs)
}

type multi []Navigator

func (m multi) Navigate(url string) {
	for _, n := range m {
		n.Navigate(url)
	}
}

func (m multi) Back() {
	for _, n := range m {
		n.Back()
	}
}
