package application

import "sync"

// Feed holds the latest observed page text and request URL. Plan
// detection strategies sample it lazily, so observations recorded before
// a detection run still inform it.
type Feed struct {
	mu   sync.Mutex
	text string
	url  string
}

func NewFeed() *Feed {
	return &Feed{}
}

func (f *Feed) SetText(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text = text
}

func (f *Feed) Text() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text
}

func (f *Feed) SetURL(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if url != "" {
		f.url = url
	}
}

func (f *Feed) URL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.url
}
