// Package catalog holds the in-memory featured-video catalog and keeps it in
// step with the remote data service. Every mutation goes to the remote first;
// local state changes only after the remote confirms.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"celflicks/internal/domain/videos"
	"celflicks/internal/snapshot"

	"go.uber.org/zap"
)

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Up:
		return Up, nil
	case Down:
		return Down, nil
	}
	return "", ErrInvalidDirection
}

// Status is the observable request state of the store.
type Status struct {
	Loading     bool      `json:"isLoading"`
	Error       string    `json:"error,omitempty"`
	Videos      int       `json:"videos"`
	Featured    int       `json:"featured"`
	LastFetched time.Time `json:"lastFetched,omitempty"`
}

type featuredItem struct {
	entry videos.FeaturedEntry
	video videos.Video
}

type Store struct {
	remote    videos.Store
	persister snapshot.Persister
	logger    *zap.SugaredLogger
	now       func() time.Time

	mu          sync.RWMutex
	videos      []videos.Video
	featured    map[videos.Category][]featuredItem
	inflight    int
	lastErr     string
	lastFetched time.Time
	// rev moves on every fetch start and every applied mutation; a fetch only
	// lands if rev is unchanged when it returns.
	rev uint64
}

// New builds a store around the remote data service and seeds it from the
// persisted snapshot when one exists. persister may be nil.
func New(remote videos.Store, persister snapshot.Persister, logger *zap.SugaredLogger) *Store {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &Store{
		remote:    remote,
		persister: persister,
		logger:    logger,
		now:       time.Now,
		videos:    []videos.Video{},
		featured:  emptyFeatured(),
	}
	s.restore()
	return s
}

func emptyFeatured() map[videos.Category][]featuredItem {
	m := make(map[videos.Category][]featuredItem, len(videos.Categories()))
	for _, c := range videos.Categories() {
		m[c] = []featuredItem{}
	}
	return m
}

func (s *Store) restore() {
	if s.persister == nil {
		return
	}
	snap, err := s.persister.Load()
	if err != nil {
		if !errors.Is(err, snapshot.ErrNotFound) {
			s.logger.Warnw("ignoring unreadable catalog snapshot", "error", err)
		}
		return
	}

	s.videos = append([]videos.Video{}, snap.Videos...)
	if len(snap.Entries) > 0 {
		s.featured = join(s.videos, snap.Entries)
	} else {
		// older snapshots carry only the videos per category
		for c, list := range snap.Featured {
			if _, ok := s.featured[c]; !ok {
				continue
			}
			for i, v := range list {
				s.featured[c] = append(s.featured[c], featuredItem{
					entry: videos.FeaturedEntry{VideoID: v.ID, Category: c, Position: i},
					video: v,
				})
			}
		}
	}
	s.lastFetched = snap.SavedAt
	s.logger.Infow("catalog restored from snapshot", "videos", len(s.videos))
}

// join attaches each entry to its video, drops entries whose video is gone,
// and orders every category by position.
func join(list []videos.Video, entries []videos.FeaturedEntry) map[videos.Category][]featuredItem {
	byID := make(map[string]videos.Video, len(list))
	for _, v := range list {
		byID[v.ID] = v
	}

	out := emptyFeatured()
	for _, e := range entries {
		v, ok := byID[e.VideoID]
		if !ok {
			continue
		}
		if _, known := out[e.Category]; !known {
			continue
		}
		out[e.Category] = append(out[e.Category], featuredItem{entry: e, video: v})
	}
	for c := range out {
		items := out[c]
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].entry.Position < items[j].entry.Position
		})
	}
	return out
}

// begin and finish bracket a remote call for Status().Loading.
func (s *Store) begin() {
	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()
}

func (s *Store) finish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	s.recordLocked(err)
}

func (s *Store) recordLocked(err error) {
	switch {
	case err == nil:
		s.lastErr = ""
	case errors.Is(err, ErrStaleFetch):
	default:
		s.lastErr = err.Error()
	}
}

// persistLocked mirrors the current state to the snapshot. A failed write is
// logged and never fails the mutation that triggered it.
func (s *Store) persistLocked() {
	if s.persister == nil {
		return
	}
	snap := &snapshot.Snapshot{
		Videos:   append([]videos.Video{}, s.videos...),
		Featured: make(map[videos.Category][]videos.Video, len(s.featured)),
		SavedAt:  s.now().UTC(),
	}
	for c, items := range s.featured {
		list := make([]videos.Video, len(items))
		for i, it := range items {
			list[i] = it.video
			snap.Entries = append(snap.Entries, it.entry)
		}
		snap.Featured[c] = list
	}
	if err := s.persister.Save(snap); err != nil {
		s.logger.Warnw("failed to persist catalog snapshot", "error", err)
	}
}

// ------------------- Reads -------------------

func (s *Store) Videos() []videos.Video {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]videos.Video{}, s.videos...)
}

func (s *Store) Video(id string) (videos.Video, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(id)
	if i < 0 {
		return videos.Video{}, false
	}
	return s.videos[i], true
}

// Featured returns the category's videos in position order. Unknown or empty
// categories yield an empty, non-nil slice.
func (s *Store) Featured(c videos.Category) []videos.Video {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := s.featured[c]
	out := make([]videos.Video, len(items))
	for i, it := range items {
		out[i] = it.video
	}
	return out
}

func (s *Store) FeaturedAll() map[videos.Category][]videos.Video {
	out := make(map[videos.Category][]videos.Video, len(videos.Categories()))
	for _, c := range videos.Categories() {
		out[c] = s.Featured(c)
	}
	return out
}

// Entries returns the featured rows of a category in position order.
func (s *Store) Entries(c videos.Category) []videos.FeaturedEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := s.featured[c]
	out := make([]videos.FeaturedEntry, len(items))
	for i, it := range items {
		out[i] = it.entry
	}
	return out
}

func (s *Store) IsFeatured(videoID string, c videos.Category) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexOf(s.featured[c], videoID) >= 0
}

func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, items := range s.featured {
		n += len(items)
	}
	return Status{
		Loading:     s.inflight > 0,
		Error:       s.lastErr,
		Videos:      len(s.videos),
		Featured:    n,
		LastFetched: s.lastFetched,
	}
}

func (s *Store) indexLocked(id string) int {
	for i, v := range s.videos {
		if v.ID == id {
			return i
		}
	}
	return -1
}

func indexOf(items []featuredItem, videoID string) int {
	for i, it := range items {
		if it.video.ID == videoID {
			return i
		}
	}
	return -1
}

// ------------------- Fetch -------------------

// FetchAll replaces the whole state with the remote catalog. On failure the
// previous state is kept.
func (s *Store) FetchAll(ctx context.Context) error {
	s.mu.Lock()
	s.rev++
	rev := s.rev
	s.inflight++
	s.mu.Unlock()

	list, entries, err := s.load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--

	if err == nil && ctx.Err() != nil {
		err = &FetchError{Err: ctx.Err()}
	}
	if err == nil && rev != s.rev {
		err = ErrStaleFetch
	}
	s.recordLocked(err)
	if err != nil {
		if errors.Is(err, ErrStaleFetch) {
			s.logger.Infow("discarding superseded catalog fetch")
		} else {
			s.logger.Errorw("catalog fetch failed", "error", err)
		}
		return err
	}

	s.videos = list
	s.featured = join(list, entries)
	s.lastFetched = s.now().UTC()
	s.persistLocked()
	return nil
}

func (s *Store) load(ctx context.Context) ([]videos.Video, []videos.FeaturedEntry, error) {
	list, err := s.remote.ListVideos(ctx)
	if err != nil {
		return nil, nil, &FetchError{Err: err}
	}
	entries, err := s.remote.ListFeatured(ctx)
	if err != nil {
		return nil, nil, &FetchError{Err: err}
	}
	if list == nil {
		list = []videos.Video{}
	}
	return list, entries, nil
}

// ------------------- Videos -------------------

// Add creates the video remotely and appends the server record. Nothing is
// inserted locally before the remote confirms.
func (s *Store) Add(ctx context.Context, v videos.Video) (*videos.Video, error) {
	if v.ID == "" {
		v.ID = fmt.Sprintf("video-%d", s.now().UnixMilli())
	}
	tempID := v.ID

	if err := validate(v); err != nil {
		return nil, s.fail(&WriteError{Op: "add video", Err: err})
	}
	v = v.Normalize()
	v.ID = ""

	s.begin()
	created, err := s.remote.CreateVideo(ctx, v)
	if err != nil {
		werr := &WriteError{Op: "add video", Err: err}
		s.finish(werr)
		s.logger.Errorw("failed to add video", "temp_id", tempID, "error", err)
		return nil, werr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	s.recordLocked(nil)
	s.rev++
	s.videos = append(s.videos, *created)
	s.persistLocked()

	s.logger.Infow("video added", "temp_id", tempID, "id", created.ID, "platform", created.Platform)
	return created, nil
}

// Update writes the full record for id and replaces it in place, including
// its copies in featured categories.
func (s *Store) Update(ctx context.Context, id string, v videos.Video) (*videos.Video, error) {
	if _, ok := s.Video(id); !ok {
		return nil, s.fail(&WriteError{Op: "update video", VideoID: id, Err: ErrVideoNotFound})
	}
	if err := validate(v); err != nil {
		return nil, s.fail(&WriteError{Op: "update video", VideoID: id, Err: err})
	}
	v = v.Normalize()
	v.ID = id

	s.begin()
	updated, err := s.remote.UpdateVideo(ctx, id, v)
	if err != nil {
		if errors.Is(err, videos.ErrNotFound) {
			err = ErrVideoNotFound
		}
		werr := &WriteError{Op: "update video", VideoID: id, Err: err}
		s.finish(werr)
		return nil, werr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	s.recordLocked(nil)
	s.rev++
	if i := s.indexLocked(id); i >= 0 {
		s.videos[i] = *updated
	}
	for c, items := range s.featured {
		if i := indexOf(items, id); i >= 0 {
			s.featured[c][i].video = *updated
		}
	}
	s.persistLocked()
	return updated, nil
}

// Remove deletes the video's featured rows, then the video. Local state
// changes only once both remote deletes succeed.
func (s *Store) Remove(ctx context.Context, id string) error {
	if _, ok := s.Video(id); !ok {
		return s.fail(&WriteError{Op: "remove video", VideoID: id, Err: ErrVideoNotFound})
	}

	s.begin()
	if err := s.remote.DeleteFeaturedByVideo(ctx, id); err != nil {
		werr := &WriteError{Op: "remove video", VideoID: id, Err: err}
		s.finish(werr)
		return werr
	}
	if err := s.remote.DeleteVideo(ctx, id); err != nil {
		// featured rows are already gone remotely; the next FetchAll reconciles
		s.logger.Errorw("video delete failed after its featured entries were removed",
			"video_id", id,
			"error", err,
		)
		werr := &WriteError{Op: "remove video", VideoID: id, Err: err}
		s.finish(werr)
		return werr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	s.recordLocked(nil)
	s.rev++
	if i := s.indexLocked(id); i >= 0 {
		s.videos = append(s.videos[:i], s.videos[i+1:]...)
	}
	for c, items := range s.featured {
		if i := indexOf(items, id); i >= 0 {
			s.featured[c] = compact(items, i)
		}
	}
	s.persistLocked()
	return nil
}

// compact drops items[i] and shifts later positions down by one, matching
// what the repository does remotely.
func compact(items []featuredItem, i int) []featuredItem {
	out := make([]featuredItem, 0, len(items)-1)
	out = append(out, items[:i]...)
	for _, it := range items[i+1:] {
		it.entry.Position--
		out = append(out, it)
	}
	return out
}

// ------------------- Featured -------------------

// Feature appends the video to the end of the category. Featuring a video
// that is already in the category fails with ErrAlreadyFeatured.
func (s *Store) Feature(ctx context.Context, videoID string, c videos.Category) error {
	op := "feature video in " + string(c)

	v, ok := s.Video(videoID)
	if !ok {
		return s.fail(&WriteError{Op: op, VideoID: videoID, Err: ErrVideoNotFound})
	}
	if s.IsFeatured(videoID, c) {
		return s.fail(&WriteError{Op: op, VideoID: videoID, Err: ErrAlreadyFeatured})
	}

	s.begin()
	current, err := s.remote.ListFeaturedByCategory(ctx, c)
	if err != nil {
		werr := &WriteError{Op: op, VideoID: videoID, Err: err}
		s.finish(werr)
		return werr
	}

	position := 0
	for _, e := range current {
		if e.VideoID == videoID {
			werr := &WriteError{Op: op, VideoID: videoID, Err: ErrAlreadyFeatured}
			s.finish(werr)
			return werr
		}
		if e.Position+1 > position {
			position = e.Position + 1
		}
	}

	entry, err := s.remote.CreateFeatured(ctx, videos.FeaturedEntry{
		VideoID:  videoID,
		Category: c,
		Position: position,
	})
	if err != nil {
		if errors.Is(err, videos.ErrDuplicateFeatured) {
			err = ErrAlreadyFeatured
		}
		werr := &WriteError{Op: op, VideoID: videoID, Err: err}
		s.finish(werr)
		return werr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	s.recordLocked(nil)
	s.rev++
	items := append(s.featured[c], featuredItem{entry: *entry, video: v})
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].entry.Position < items[j].entry.Position
	})
	s.featured[c] = items
	s.persistLocked()
	return nil
}

// Unfeature removes the video from the category. It is a no-op when the
// video is not featured there.
func (s *Store) Unfeature(ctx context.Context, videoID string, c videos.Category) error {
	s.begin()
	if err := s.remote.DeleteFeatured(ctx, videoID, c); err != nil {
		werr := &WriteError{Op: "unfeature video from " + string(c), VideoID: videoID, Err: err}
		s.finish(werr)
		return werr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	s.recordLocked(nil)
	if i := indexOf(s.featured[c], videoID); i >= 0 {
		s.rev++
		s.featured[c] = compact(s.featured[c], i)
		s.persistLocked()
	}
	return nil
}

// Move swaps the video with its neighbour in the given direction. Moving the
// first entry up or the last entry down is a no-op.
func (s *Store) Move(ctx context.Context, videoID string, c videos.Category, d Direction) error {
	op := "move video in " + string(c)
	if d != Up && d != Down {
		return s.fail(&WriteError{Op: op, VideoID: videoID, Err: ErrInvalidDirection})
	}

	s.mu.RLock()
	items := s.featured[c]
	i := indexOf(items, videoID)
	j := i - 1
	if d == Down {
		j = i + 1
	}
	var a, b videos.FeaturedEntry
	if i >= 0 && j >= 0 && j < len(items) {
		a, b = items[i].entry, items[j].entry
	}
	s.mu.RUnlock()

	if i < 0 {
		return s.fail(&WriteError{Op: op, VideoID: videoID, Err: ErrNotFeatured})
	}
	if j < 0 || j >= len(items) {
		return nil
	}

	s.begin()
	if a.ID == 0 || b.ID == 0 {
		// restored from a snapshot that predates entry ids
		if err := s.resolveEntryIDs(ctx, c, &a, &b); err != nil {
			werr := &WriteError{Op: op, VideoID: videoID, Err: err}
			s.finish(werr)
			return werr
		}
	}
	if err := s.remote.SwapPositions(ctx, a, b); err != nil {
		werr := &WriteError{Op: op, VideoID: videoID, Err: err}
		s.finish(werr)
		return werr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	s.recordLocked(nil)
	s.rev++
	items = s.featured[c]
	x, y := indexOf(items, a.VideoID), indexOf(items, b.VideoID)
	if x >= 0 && y >= 0 {
		items[x].entry.ID, items[y].entry.ID = a.ID, b.ID
		items[x].entry.Position, items[y].entry.Position = b.Position, a.Position
		items[x], items[y] = items[y], items[x]
	}
	s.persistLocked()
	return nil
}

func (s *Store) resolveEntryIDs(ctx context.Context, c videos.Category, a, b *videos.FeaturedEntry) error {
	current, err := s.remote.ListFeaturedByCategory(ctx, c)
	if err != nil {
		return err
	}
	for _, e := range current {
		switch e.VideoID {
		case a.VideoID:
			*a = e
		case b.VideoID:
			*b = e
		}
	}
	if a.ID == 0 || b.ID == 0 {
		return ErrNotFeatured
	}
	return nil
}

// fail records err as the current error without touching the remote.
func (s *Store) fail(err error) error {
	s.mu.Lock()
	s.recordLocked(err)
	s.mu.Unlock()
	return err
}

func validate(v videos.Video) error {
	if strings.TrimSpace(v.Title) == "" || strings.TrimSpace(v.SourceURL) == "" {
		return ErrInvalidVideo
	}
	return nil
}
