package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-cms/internal/config"
	"portfolio-cms/internal/domains/content/model"
	types "portfolio-cms/internal/shared"
)

// ------------------------------------------------------------------
// fakes

type fakeRepo struct {
	mu      sync.Mutex
	records map[string]*model.ContentRecord
	taken   map[string]bool

	createErr error
	updateErr error
	creates   int
	updates   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		records: map[string]*model.ContentRecord{},
		taken:   map[string]bool{},
	}
}

func (r *fakeRepo) GetByID(ctx context.Context, v model.Variant, id string) (*model.ContentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	clone := *rec
	return &clone, nil
}

func (r *fakeRepo) GetBySlug(ctx context.Context, v model.Variant, slug string) (*model.ContentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.Slug == slug {
			clone := *rec
			return &clone, nil
		}
	}
	return nil, model.ErrNotFound
}

func (r *fakeRepo) List(ctx context.Context, v model.Variant, f model.ListFilter) ([]model.ContentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.ContentRecord
	for _, rec := range r.records {
		out = append(out, *rec)
	}
	return out, nil
}

func (r *fakeRepo) Create(ctx context.Context, v model.Variant, rec *model.ContentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.createErr != nil {
		return r.createErr
	}
	clone := *rec
	r.records[rec.ID.String()] = &clone
	return nil
}

func (r *fakeRepo) Update(ctx context.Context, v model.Variant, rec *model.ContentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.records[rec.ID.String()]; !ok {
		return model.ErrNotFound
	}
	clone := *rec
	r.records[rec.ID.String()] = &clone
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, v model.Variant, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return model.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *fakeRepo) SlugTaken(ctx context.Context, v model.Variant, slug, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.taken[slug], nil
}

func (r *fakeRepo) AllAssetURLs(ctx context.Context, v model.Variant) ([]string, error) {
	return nil, nil
}

const fakeHost = "assets.test:9000"

// fakeStore fails any upload whose payload contains "FAILME", which keeps
// failure injection deterministic even with the concurrent hero upload.
type fakeStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	removed   []string
	uploads   int
	removeErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (s *fakeStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads++
	if bytes.Contains(data, []byte("FAILME")) {
		return "", errors.New("storage unavailable")
	}
	s.objects[key] = data
	return fmt.Sprintf("http://%s/portfolio/%s", fakeHost, key), nil
}

func (s *fakeStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removeErr != nil {
		return s.removeErr
	}
	delete(s.objects, key)
	s.removed = append(s.removed, key)
	return nil
}

func (s *fakeStore) RemoveBatch(ctx context.Context, keys []string) error {
	for _, key := range keys {
		if err := s.Remove(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (s *fakeStore) KeyFor(assetURL string) (string, bool) {
	prefix := fmt.Sprintf("http://%s/portfolio/", fakeHost)
	if !strings.HasPrefix(assetURL, prefix) {
		return "", false
	}
	return strings.TrimPrefix(assetURL, prefix), true
}

func (s *fakeStore) stored() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

type fakeProcessor struct{}

func (fakeProcessor) Validate(data []byte) (string, error) {
	if bytes.Contains(data, []byte("NOTANIMAGE")) {
		return "", errors.New("not an image")
	}
	return "jpeg", nil
}

func (fakeProcessor) Normalize(data []byte) ([]byte, string, string, error) {
	return data, "image/jpeg", "jpg", nil
}

type fakeCache struct{}

func (fakeCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return false, nil
}
func (fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}
func (fakeCache) Delete(ctx context.Context, keys ...string) error        { return nil }
func (fakeCache) DeletePattern(ctx context.Context, pattern string) error { return nil }
func (fakeCache) Ping(ctx context.Context) error                          { return nil }

type fakeQueue struct {
	mu    sync.Mutex
	tasks []*asynq.Task
}

func (q *fakeQueue) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func (q *fakeQueue) byType(taskType string) []*asynq.Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []*asynq.Task
	for _, t := range q.tasks {
		if t.Type() == taskType {
			out = append(out, t)
		}
	}
	return out
}

// ------------------------------------------------------------------

type fixture struct {
	repo  *fakeRepo
	store *fakeStore
	queue *fakeQueue
	svc   ContentService
}

func newFixture() *fixture {
	repo := newFakeRepo()
	store := newFakeStore()
	queue := &fakeQueue{}
	svc := NewContentService(repo, store, fakeProcessor{}, fakeCache{}, queue, config.UploadConfig{
		CreateTimeout: 5 * time.Second,
		EditTimeout:   5 * time.Second,
	})
	return &fixture{repo: repo, store: store, queue: queue, svc: svc}
}

func baseSubmission() model.Submission {
	return model.Submission{
		Title:   "Realtime dashboard",
		Slug:    "realtime-dashboard",
		Summary: "A dashboard that visualizes live telemetry.",
	}
}

func file(name, content string) model.UploadFile {
	return model.UploadFile{Name: name, Data: []byte(content)}
}

func TestCreateHappyPath(t *testing.T) {
	fx := newFixture()

	sub := baseSubmission()
	hero := file("hero.jpg", "hero-bytes")
	sub.HeroFile = &hero
	sub.GalleryFiles = []model.UploadFile{
		{Name: "one.jpg", Data: []byte("one"), Caption: "First"},
		{Name: "two.jpg", Data: []byte("two")},
	}

	rec, err := fx.svc.Create(context.Background(), model.VariantProject, sub)
	require.NoError(t, err)

	assert.NotEmpty(t, rec.HeroURL)
	require.Len(t, rec.Gallery, 2)
	assert.Equal(t, "First", rec.Gallery[0].Caption)
	assert.Equal(t, 3, fx.store.stored())
	assert.Equal(t, 1, fx.repo.creates)

	// New uploads land under the record's own folder.
	for _, item := range rec.Gallery {
		key, ok := fx.store.KeyFor(item.URL)
		require.True(t, ok)
		assert.True(t, strings.HasPrefix(key, "projects/"+rec.ID.String()+"/"), key)
	}
}

func TestCreateValidationFailureHasNoSideEffects(t *testing.T) {
	fx := newFixture()

	_, err := fx.svc.Create(context.Background(), model.VariantProject, model.Submission{})

	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")
	assert.Zero(t, fx.store.uploads)
	assert.Zero(t, fx.repo.creates)
}

func TestCreateBadImageRejectedBeforeUpload(t *testing.T) {
	fx := newFixture()

	sub := baseSubmission()
	sub.GalleryFiles = []model.UploadFile{file("x.jpg", "NOTANIMAGE")}

	_, err := fx.svc.Create(context.Background(), model.VariantProject, sub)

	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "gallery")
	assert.Zero(t, fx.store.uploads)
}

func TestCreateUploadFailureRollsBackBatch(t *testing.T) {
	fx := newFixture()

	sub := baseSubmission()
	sub.GalleryFiles = []model.UploadFile{
		file("one.jpg", "ok-one"),
		file("two.jpg", "FAILME"),
		file("three.jpg", "ok-three"),
	}

	_, err := fx.svc.Create(context.Background(), model.VariantProject, sub)

	var uerr *model.UploadError
	require.ErrorAs(t, err, &uerr)
	assert.Zero(t, fx.repo.creates, "persist must not run after an upload failure")
	assert.Zero(t, fx.store.stored(), "successful same-batch uploads must be rolled back")
}

func TestCreateSlugConflictPreCheck(t *testing.T) {
	fx := newFixture()
	fx.repo.taken["realtime-dashboard"] = true

	sub := baseSubmission()
	hero := file("hero.jpg", "hero")
	sub.HeroFile = &hero

	_, err := fx.svc.Create(context.Background(), model.VariantProject, sub)

	var cerr *model.ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "slug", cerr.Field)
	assert.Zero(t, fx.store.uploads, "conflict detected before any upload")
}

func TestCreatePersistFailureRollsBackUploads(t *testing.T) {
	fx := newFixture()
	fx.repo.createErr = errors.New("connection reset")

	sub := baseSubmission()
	sub.GalleryFiles = []model.UploadFile{file("one.jpg", "ok")}

	_, err := fx.svc.Create(context.Background(), model.VariantProject, sub)

	var perr *model.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Zero(t, fx.store.stored())
}

func TestCreateConstraintRaceMapsToConflict(t *testing.T) {
	fx := newFixture()
	fx.repo.createErr = model.ErrSlugTaken

	_, err := fx.svc.Create(context.Background(), model.VariantProject, baseSubmission())

	var cerr *model.ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "slug", cerr.Field)
}

func seedRecord(t *testing.T, fx *fixture) *model.ContentRecord {
	t.Helper()
	sub := baseSubmission()
	hero := file("hero.jpg", "hero")
	sub.HeroFile = &hero
	sub.GalleryFiles = []model.UploadFile{
		{Name: "a.jpg", Data: []byte("a"), Caption: "A"},
		{Name: "b.jpg", Data: []byte("b"), Caption: "B"},
	}
	rec, err := fx.svc.Create(context.Background(), model.VariantProject, sub)
	require.NoError(t, err)
	return rec
}

// keptField renders a persisted gallery back into the textarea format the
// console submits.
func keptField(items ...model.GalleryItem) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = item.URL + " | " + item.Caption
	}
	return strings.Join(lines, "\n")
}

func TestUpdateNoOpEditTouchesNothingRemote(t *testing.T) {
	fx := newFixture()
	rec := seedRecord(t, fx)
	uploadsBefore := fx.store.uploads

	sub := baseSubmission()
	sub.HeroURL = rec.HeroURL
	sub.GalleryKept = keptField(rec.Gallery...)

	updated, err := fx.svc.Update(context.Background(), model.VariantProject, rec.ID.String(), sub)
	require.NoError(t, err)

	assert.Equal(t, fx.store.uploads, uploadsBefore, "no new files, no uploads")
	assert.Empty(t, fx.queue.byType(types.TypeCleanupAssets), "nothing stale, no cleanup")
	assert.Equal(t, rec.HeroURL, updated.HeroURL)
	assert.Equal(t, rec.Gallery, updated.Gallery)
}

func TestUpdateDroppedGalleryEntryScheduledForCleanup(t *testing.T) {
	fx := newFixture()
	rec := seedRecord(t, fx)

	sub := baseSubmission()
	sub.HeroURL = rec.HeroURL
	sub.GalleryKept = keptField(rec.Gallery[0]) // drop the second entry

	updated, err := fx.svc.Update(context.Background(), model.VariantProject, rec.ID.String(), sub)
	require.NoError(t, err)
	require.Len(t, updated.Gallery, 1)

	tasks := fx.queue.byType(types.TypeCleanupAssets)
	require.Len(t, tasks, 1)

	var payload model.CleanupAssetsPayload
	require.NoError(t, json.Unmarshal(tasks[0].Payload(), &payload))
	assert.Equal(t, []string{rec.Gallery[1].URL}, payload.URLs)
}

func TestUpdateHeroReplacementScheduledForCleanup(t *testing.T) {
	fx := newFixture()
	rec := seedRecord(t, fx)

	sub := baseSubmission()
	newHero := file("hero2.jpg", "hero2")
	sub.HeroFile = &newHero
	sub.GalleryKept = keptField(rec.Gallery...)

	updated, err := fx.svc.Update(context.Background(), model.VariantProject, rec.ID.String(), sub)
	require.NoError(t, err)
	assert.NotEqual(t, rec.HeroURL, updated.HeroURL)

	tasks := fx.queue.byType(types.TypeCleanupAssets)
	require.Len(t, tasks, 1)

	var payload model.CleanupAssetsPayload
	require.NoError(t, json.Unmarshal(tasks[0].Payload(), &payload))
	assert.Contains(t, payload.URLs, rec.HeroURL)
}

func TestUpdateHeroRemovedEntirely(t *testing.T) {
	fx := newFixture()
	rec := seedRecord(t, fx)

	sub := baseSubmission()
	// No hero file, no kept hero URL: the record ends up hero-less.
	sub.GalleryKept = keptField(rec.Gallery...)

	updated, err := fx.svc.Update(context.Background(), model.VariantProject, rec.ID.String(), sub)
	require.NoError(t, err)
	assert.Empty(t, updated.HeroURL)

	tasks := fx.queue.byType(types.TypeCleanupAssets)
	require.Len(t, tasks, 1)

	var payload model.CleanupAssetsPayload
	require.NoError(t, json.Unmarshal(tasks[0].Payload(), &payload))
	assert.Contains(t, payload.URLs, rec.HeroURL, "orphaned hero scheduled for deletion")
}

func TestUpdateNewUploadsAppendAfterKept(t *testing.T) {
	fx := newFixture()
	rec := seedRecord(t, fx)

	sub := baseSubmission()
	sub.HeroURL = rec.HeroURL
	// Keep in reversed order, then add one new file.
	sub.GalleryKept = keptField(rec.Gallery[1], rec.Gallery[0])
	sub.GalleryFiles = []model.UploadFile{{Name: "c.jpg", Data: []byte("c"), Caption: "C"}}

	updated, err := fx.svc.Update(context.Background(), model.VariantProject, rec.ID.String(), sub)
	require.NoError(t, err)

	require.Len(t, updated.Gallery, 3)
	assert.Equal(t, rec.Gallery[1].URL, updated.Gallery[0].URL)
	assert.Equal(t, rec.Gallery[0].URL, updated.Gallery[1].URL)
	assert.Equal(t, "C", updated.Gallery[2].Caption)
}

func TestUpdatePersistFailureKeepsOldRecordAndRollsBackUploads(t *testing.T) {
	fx := newFixture()
	rec := seedRecord(t, fx)
	storedBefore := fx.store.stored()
	fx.repo.updateErr = errors.New("deadlock detected")

	sub := baseSubmission()
	sub.HeroURL = rec.HeroURL
	sub.GalleryKept = keptField(rec.Gallery...)
	sub.GalleryFiles = []model.UploadFile{file("c.jpg", "c")}

	_, err := fx.svc.Update(context.Background(), model.VariantProject, rec.ID.String(), sub)

	var perr *model.PersistenceError
	require.ErrorAs(t, err, &perr)

	assert.Equal(t, storedBefore, fx.store.stored(), "this request's uploads rolled back, old assets intact")
	assert.Empty(t, fx.queue.byType(types.TypeCleanupAssets), "no cleanup on abort")

	current, err := fx.repo.GetByID(context.Background(), model.VariantProject, rec.ID.String())
	require.NoError(t, err)
	assert.Equal(t, rec.Gallery, current.Gallery)
}

func TestUpdateNotFound(t *testing.T) {
	fx := newFixture()

	_, err := fx.svc.Update(context.Background(), model.VariantProject,
		"7d6f1a7e-54d1-4c9b-9a41-2c9f35f3a111", baseSubmission())

	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDeleteEnqueuesFolderRemoval(t *testing.T) {
	fx := newFixture()
	rec := seedRecord(t, fx)

	require.NoError(t, fx.svc.Delete(context.Background(), model.VariantProject, rec.ID.String()))

	_, err := fx.repo.GetByID(context.Background(), model.VariantProject, rec.ID.String())
	assert.ErrorIs(t, err, model.ErrNotFound)

	tasks := fx.queue.byType(types.TypeDeleteRecordAssets)
	require.Len(t, tasks, 1)

	var payload model.DeleteRecordAssetsPayload
	require.NoError(t, json.Unmarshal(tasks[0].Payload(), &payload))
	assert.Equal(t, rec.ID.String(), payload.RecordID)
	assert.Equal(t, string(model.VariantProject), payload.Variant)
}
