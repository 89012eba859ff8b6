package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"celflicks/internal/domain/videos"

	"github.com/google/uuid"
)

// fakeRemote is an in-memory videos.Store with the same position
// compaction the pgx repository performs.
type fakeRemote struct {
	mu      sync.Mutex
	videos  []videos.Video
	entries []videos.FeaturedEntry
	nextID  int64

	errList        error
	errCreate      error
	errDeleteVideo error
	errSwap        error
	beforeList     func()

	calls map[string]int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{calls: map[string]int{}}
}

func (f *fakeRemote) called(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeRemote) seedVideo(title, url string) videos.Video {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := videos.Video{ID: uuid.NewString(), Title: title, SourceURL: url, Tags: []string{}}.Normalize()
	v.CreatedAt = time.Now()
	f.videos = append(f.videos, v)
	return v
}

func (f *fakeRemote) seedEntry(videoID string, c videos.Category, pos int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.entries = append(f.entries, videos.FeaturedEntry{ID: f.nextID, VideoID: videoID, Category: c, Position: pos})
}

func (f *fakeRemote) positions(c videos.Category) map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]int{}
	for _, e := range f.entries {
		if e.Category == c {
			out[e.VideoID] = e.Position
		}
	}
	return out
}

func (f *fakeRemote) ListVideos(ctx context.Context) ([]videos.Video, error) {
	f.mu.Lock()
	hook := f.beforeList
	f.beforeList = nil
	f.mu.Unlock()
	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["ListVideos"]++
	if f.errList != nil {
		return nil, f.errList
	}
	return append([]videos.Video{}, f.videos...), nil
}

func (f *fakeRemote) CreateVideo(ctx context.Context, v videos.Video) (*videos.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["CreateVideo"]++
	if f.errCreate != nil {
		return nil, f.errCreate
	}
	if v.ID != "" {
		panic("create must not carry an id")
	}
	v.ID = uuid.NewString()
	v.CreatedAt = time.Now()
	v.UpdatedAt = v.CreatedAt
	f.videos = append(f.videos, v)
	return &v, nil
}

func (f *fakeRemote) UpdateVideo(ctx context.Context, id string, v videos.Video) (*videos.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["UpdateVideo"]++
	for i := range f.videos {
		if f.videos[i].ID == id {
			v.ID = id
			v.CreatedAt = f.videos[i].CreatedAt
			v.UpdatedAt = time.Now()
			f.videos[i] = v
			return &v, nil
		}
	}
	return nil, videos.ErrNotFound
}

func (f *fakeRemote) DeleteVideo(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["DeleteVideo"]++
	if f.errDeleteVideo != nil {
		return f.errDeleteVideo
	}
	for i := range f.videos {
		if f.videos[i].ID == id {
			f.videos = append(f.videos[:i], f.videos[i+1:]...)
			return nil
		}
	}
	return videos.ErrNotFound
}

func (f *fakeRemote) ListFeatured(ctx context.Context) ([]videos.FeaturedEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["ListFeatured"]++
	if f.errList != nil {
		return nil, f.errList
	}
	out := append([]videos.FeaturedEntry{}, f.entries...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeRemote) ListFeaturedByCategory(ctx context.Context, c videos.Category) ([]videos.FeaturedEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["ListFeaturedByCategory"]++
	var out []videos.FeaturedEntry
	for _, e := range f.entries {
		if e.Category == c {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeRemote) CreateFeatured(ctx context.Context, e videos.FeaturedEntry) (*videos.FeaturedEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["CreateFeatured"]++
	for _, x := range f.entries {
		if x.VideoID == e.VideoID && x.Category == e.Category {
			return nil, videos.ErrDuplicateFeatured
		}
	}
	f.nextID++
	e.ID = f.nextID
	f.entries = append(f.entries, e)
	return &e, nil
}

func (f *fakeRemote) removeEntryLocked(i int) {
	gone := f.entries[i]
	f.entries = append(f.entries[:i], f.entries[i+1:]...)
	for k := range f.entries {
		if f.entries[k].Category == gone.Category && f.entries[k].Position > gone.Position {
			f.entries[k].Position--
		}
	}
}

func (f *fakeRemote) DeleteFeatured(ctx context.Context, videoID string, c videos.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["DeleteFeatured"]++
	for i, e := range f.entries {
		if e.VideoID == videoID && e.Category == c {
			f.removeEntryLocked(i)
			return nil
		}
	}
	return nil
}

func (f *fakeRemote) DeleteFeaturedByVideo(ctx context.Context, videoID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["DeleteFeaturedByVideo"]++
	for i := len(f.entries) - 1; i >= 0; i-- {
		if f.entries[i].VideoID == videoID {
			f.removeEntryLocked(i)
		}
	}
	return nil
}

func (f *fakeRemote) SwapPositions(ctx context.Context, a, b videos.FeaturedEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["SwapPositions"]++
	if f.errSwap != nil {
		return f.errSwap
	}
	var ia, ib = -1, -1
	for i, e := range f.entries {
		switch e.ID {
		case a.ID:
			ia = i
		case b.ID:
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return videos.ErrNotFound
	}
	f.entries[ia].Position, f.entries[ib].Position = b.Position, a.Position
	return nil
}
