package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	e "github.com/microcosm-cc/newsfeed/errors"
)

func TestStoreCorpusSize(t *testing.T) {
	for _, count := range []int{0, 1, 100} {
		var s NewsStore
		if err := s.Initialize(count, RandomNews(1)); err != nil {
			t.Fatalf("Initialize(%d) %+v", count, err)
		}

		news, err := s.GetAll()
		if err != nil {
			t.Fatalf("GetAll() %+v", err)
		}
		if len(news) != count {
			t.Errorf("GetAll() returned %d records, should be %d", len(news), count)
		}
	}
}

func TestStoreKeepsGeneratorOrder(t *testing.T) {
	var i int
	gen := func() (News, error) {
		i++
		return News{Title: fmt.Sprintf("title %d", i)}, nil
	}

	var s NewsStore
	if err := s.Initialize(3, gen); err != nil {
		t.Fatal(err)
	}
	if i != 3 {
		t.Errorf("generator called %d times, should be 3", i)
	}

	news, _ := s.GetAll()
	for n, item := range news {
		want := fmt.Sprintf("title %d", n+1)
		if item.Title != want {
			t.Errorf("record %d has title %q, should be %q", n, item.Title, want)
		}
	}
}

func TestStoreNotInitialized(t *testing.T) {
	var s NewsStore

	_, err := s.GetAll()
	if !errors.Is(err, e.ErrNotInitialized) {
		t.Errorf("GetAll() before Initialize returned %+v", err)
	}
}

func TestStoreGeneratorFailure(t *testing.T) {
	var calls int
	gen := func() (News, error) {
		calls++
		if calls == 2 {
			return News{}, fmt.Errorf("generator exploded")
		}
		return News{}, nil
	}

	var s NewsStore
	err := s.Initialize(5, gen)
	if !errors.Is(err, e.ErrInitializationFailure) {
		t.Fatalf("Initialize returned %+v, expected an initialization failure", err)
	}
	if calls != 2 {
		t.Errorf("generator called %d times after failing, should stop at 2", calls)
	}

	if _, err := s.GetAll(); !errors.Is(err, e.ErrNotInitialized) {
		t.Errorf("store should be uninitialised after a failed Initialize, got %+v", err)
	}

	// No retry
	if err := s.Initialize(5, RandomNews(1)); !errors.Is(err, e.ErrAlreadyInitialized) {
		t.Errorf("second Initialize returned %+v", err)
	}
}

func TestStoreInitializeOnce(t *testing.T) {
	var s NewsStore
	if err := s.Initialize(2, RandomNews(1)); err != nil {
		t.Fatal(err)
	}
	if err := s.Initialize(4, RandomNews(1)); !errors.Is(err, e.ErrAlreadyInitialized) {
		t.Errorf("second Initialize returned %+v", err)
	}

	news, _ := s.GetAll()
	if len(news) != 2 {
		t.Errorf("second Initialize changed the corpus to %d records", len(news))
	}
}

func TestStoreNegativeCount(t *testing.T) {
	var s NewsStore
	if err := s.Initialize(-1, RandomNews(1)); !errors.Is(err, e.ErrInitializationFailure) {
		t.Errorf("Initialize(-1) returned %+v", err)
	}
}

func TestStoreStripsGeneratorHTML(t *testing.T) {
	gen := func() (News, error) {
		return News{
			Title:   "<b>Breaking</b> news",
			Content: "<script>alert(1)</script><p>Body text</p>",
			Author:  `<a href="http://example.com">Jane O'Brien</a>`,
		}, nil
	}

	var s NewsStore
	if err := s.Initialize(2, gen); err != nil {
		t.Fatal(err)
	}

	news, _ := s.GetAll()
	if len(news) != 2 {
		t.Fatalf("GetAll() returned %d records, should be 2", len(news))
	}
	want := News{
		Title:   "Breaking news",
		Content: "Body text",
		Author:  "Jane O'Brien",
	}
	for i, n := range news {
		if diff := cmp.Diff(want, n); diff != "" {
			t.Errorf("record %d was not sanitised (-want +got):\n%s", i, diff)
		}
	}
}
