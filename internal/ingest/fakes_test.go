package ingest

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/etros/scorebook/internal/boxscore"
	"github.com/etros/scorebook/internal/store"
)

// In-memory stores mirroring the conditional-insert semantics of the
// SQL repositories.

type fakePlayers struct {
	mu       sync.Mutex
	byName   map[string]*store.Player
	statRefs map[int64][]int64
	nextID   int64
	failName string // GetByName/Create for this name fails
}

func newFakePlayers() *fakePlayers {
	return &fakePlayers{
		byName:   make(map[string]*store.Player),
		statRefs: make(map[int64][]int64),
	}
}

func (f *fakePlayers) GetByName(_ context.Context, name string) (*store.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if name == f.failName {
		return nil, fmt.Errorf("simulated store failure")
	}
	p, ok := f.byName[name]
	if !ok {
		return nil, fmt.Errorf("player %q: %w", name, store.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (f *fakePlayers) GetAll(_ context.Context) ([]*store.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*store.Player
	for _, p := range f.byName {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakePlayers) Create(_ context.Context, player *store.Player) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if player.Name == f.failName {
		return fmt.Errorf("simulated store failure")
	}
	f.nextID++
	player.PlayerID = f.nextID
	cp := *player
	f.byName[player.Name] = &cp
	return nil
}

func (f *fakePlayers) UpdateNumber(_ context.Context, playerID int64, number string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byName {
		if p.PlayerID == playerID {
			p.Number = number
		}
	}
	return nil
}

func (f *fakePlayers) AppendStatRef(_ context.Context, playerID, statID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.statRefs[playerID] {
		if existing == statID {
			return nil
		}
	}
	f.statRefs[playerID] = append(f.statRefs[playerID], statID)
	return nil
}

type fakeMatches struct {
	mu       sync.Mutex
	byKey    map[string]*store.Match
	statRefs map[int64][]int64
	nextID   int64
}

func newFakeMatches() *fakeMatches {
	return &fakeMatches{
		byKey:    make(map[string]*store.Match),
		statRefs: make(map[int64][]int64),
	}
}

func matchKey(date, opponent string) string { return date + "|" + opponent }

func (f *fakeMatches) FindByDateOpponent(_ context.Context, date, opponent string) (*store.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byKey[matchKey(date, opponent)]
	if !ok {
		return nil, fmt.Errorf("match %s vs %s: %w", date, opponent, store.ErrNotFound)
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMatches) CreateIfAbsent(_ context.Context, match *store.Match) (*store.Match, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := matchKey(match.MatchDate.Format("2006-01-02"), match.Opponent)
	if existing, ok := f.byKey[key]; ok {
		cp := *existing
		return &cp, false, nil
	}
	f.nextID++
	match.MatchID = f.nextID
	cp := *match
	f.byKey[key] = &cp
	return match, true, nil
}

func (f *fakeMatches) Finalize(_ context.Context, match *store.Match) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, m := range f.byKey {
		if m.MatchID == match.MatchID {
			cp := *match
			f.byKey[key] = &cp
		}
	}
	return nil
}

func (f *fakeMatches) AppendStatRef(_ context.Context, matchID, statID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.statRefs[matchID] {
		if existing == statID {
			return nil
		}
	}
	f.statRefs[matchID] = append(f.statRefs[matchID], statID)
	return nil
}

func (f *fakeMatches) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byKey)
}

type fakeStats struct {
	mu     sync.Mutex
	byKey  map[string]*store.PlayerStatLine
	nextID int64
	// failAfter fails the Nth successful insert when > 0.
	failAfter int
	inserted  int
}

func newFakeStats() *fakeStats {
	return &fakeStats{byKey: make(map[string]*store.PlayerStatLine)}
}

func statKey(matchID, playerID int64) string {
	return fmt.Sprintf("%d|%d", matchID, playerID)
}

func (f *fakeStats) CreateIfAbsent(_ context.Context, stat *store.PlayerStatLine) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := statKey(stat.MatchID, stat.PlayerID)
	if existing, ok := f.byKey[key]; ok {
		stat.StatID = existing.StatID
		return false, nil
	}
	if f.failAfter > 0 && f.inserted >= f.failAfter {
		return false, fmt.Errorf("simulated stat insert failure")
	}
	f.nextID++
	stat.StatID = f.nextID
	cp := *stat
	f.byKey[key] = &cp
	f.inserted++
	return true, nil
}

func (f *fakeStats) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byKey)
}

type fakeUploads struct {
	mu   sync.Mutex
	byID map[string]*store.Upload
}

func newFakeUploads() *fakeUploads {
	return &fakeUploads{byID: make(map[string]*store.Upload)}
}

func (f *fakeUploads) Create(_ context.Context, upload *store.Upload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	date := upload.MatchDate.Format("2006-01-02")
	for _, u := range f.byID {
		if u.MatchDate.Format("2006-01-02") == date && u.Opponent == upload.Opponent {
			return fmt.Errorf("upload for %s vs %s: %w", date, upload.Opponent, store.ErrDuplicate)
		}
	}
	if upload.UploadID == "" {
		upload.UploadID = uuid.NewString()
	}
	cp := *upload
	f.byID[upload.UploadID] = &cp
	return nil
}

func (f *fakeUploads) GetByID(_ context.Context, uploadID string) (*store.Upload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[uploadID]
	if !ok {
		return nil, fmt.Errorf("upload %s: %w", uploadID, store.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUploads) FindByMatch(_ context.Context, date, opponent string) (*store.Upload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.MatchDate.Format("2006-01-02") == date && u.Opponent == opponent {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("upload for %s vs %s: %w", date, opponent, store.ErrNotFound)
}

func (f *fakeUploads) SetProcessing(_ context.Context, uploadID string) error {
	return f.setStatus(uploadID, store.UploadStatusProcessing, "", nil)
}

func (f *fakeUploads) SetCompleted(_ context.Context, uploadID string, matchID int64) error {
	return f.setStatus(uploadID, store.UploadStatusCompleted, "", &matchID)
}

func (f *fakeUploads) SetFailed(_ context.Context, uploadID, reason string) error {
	return f.setStatus(uploadID, store.UploadStatusFailed, reason, nil)
}

func (f *fakeUploads) setStatus(uploadID, status, reason string, matchID *int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[uploadID]
	if !ok {
		return fmt.Errorf("upload %s: %w", uploadID, store.ErrNotFound)
	}
	u.Status = status
	u.ErrorMessage.Valid = reason != ""
	u.ErrorMessage.String = reason
	if matchID != nil {
		u.MatchID.Valid = true
		u.MatchID.Int64 = *matchID
	}
	return nil
}

func (f *fakeUploads) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

type fakeExtractor struct {
	tokens []boxscore.Token
	err    error
}

func (f *fakeExtractor) Extract([]byte) ([]boxscore.Token, error) {
	return f.tokens, f.err
}

type fakeEvents struct {
	mu            sync.Mutex
	uploadChanges []string // statuses in emit order
	matches       []int64
}

func (f *fakeEvents) UploadStatusChanged(_ context.Context, upload *store.Upload) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploadChanges = append(f.uploadChanges, upload.Status)
}

func (f *fakeEvents) MatchIngested(_ context.Context, match *store.Match) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matches = append(f.matches, match.MatchID)
}
