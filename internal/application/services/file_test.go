package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"mime/multipart"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"file-share-api/config"
	"file-share-api/internal/application/ports"
	domainFile "file-share-api/internal/domain/file"
	domainUser "file-share-api/internal/domain/user"
	"file-share-api/internal/infrastructure/mq"
	"file-share-api/internal/infrastructure/storage"
)

// ---- fakes ----

type FakeFileRepository struct {
	mu    sync.Mutex
	rows  map[uuid.UUID]*domainFile.File
	seq   uint64
	ByTok map[string]uuid.UUID

	CreateFileFunc func(ctx context.Context, ownerID domainUser.ID, req *domainFile.File) (*domainFile.File, error)
	DeleteFileFunc func(ctx context.Context, id domainFile.UUID) error
}

func NewFakeFileRepository() *FakeFileRepository {
	return &FakeFileRepository{
		rows:  map[uuid.UUID]*domainFile.File{},
		ByTok: map[string]uuid.UUID{},
	}
}

func (r *FakeFileRepository) insert(ownerUUID domainUser.UUID, req *domainFile.File) (*domainFile.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.ByTok[req.StoredFilename]; dup {
		return nil, domainFile.ErrStoredNameConflict
	}
	f := *req
	f.UUID = uuid.New()
	f.OwnerUUID = ownerUUID
	r.rows[f.UUID] = &f
	r.ByTok[f.StoredFilename] = f.UUID
	r.seq++
	return &f, nil
}

func (r *FakeFileRepository) CreateFile(ctx context.Context, ownerID domainUser.ID, req *domainFile.File) (*domainFile.File, error) {
	if r.CreateFileFunc != nil {
		return r.CreateFileFunc(ctx, ownerID, req)
	}
	return r.insert(req.OwnerUUID, req)
}

func (r *FakeFileRepository) FetchFileByUUID(_ context.Context, id domainFile.UUID) (*domainFile.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.rows[id]
	if !ok {
		return nil, domainFile.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *FakeFileRepository) FetchPublicFiles(context.Context, int) (domainFile.Files, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out domainFile.Files
	for _, f := range r.rows {
		if f.IsPublic {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *FakeFileRepository) FetchOwnedFiles(context.Context, domainUser.ID, domainFile.VisibilityFilter, int) (domainFile.Files, error) {
	return nil, nil
}

func (r *FakeFileRepository) DeleteFile(ctx context.Context, id domainFile.UUID) error {
	if r.DeleteFileFunc != nil {
		return r.DeleteFileFunc(ctx, id)
	}
	return r.remove(id)
}

func (r *FakeFileRepository) remove(id domainFile.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.rows[id]
	if !ok {
		return domainFile.ErrNotFound
	}
	delete(r.ByTok, f.StoredFilename)
	delete(r.rows, id)
	return nil
}

func (r *FakeFileRepository) DeleteOwnedFiles(_ context.Context, _ domainUser.ID) (domainFile.Files, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out domainFile.Files
	for id, f := range r.rows {
		cp := *f
		out = append(out, &cp)
		delete(r.ByTok, f.StoredFilename)
		delete(r.rows, id)
	}
	return out, nil
}

func (r *FakeFileRepository) hasToken(tok string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.ByTok[tok]
	return ok
}

type FakeUserRepository struct {
	InternalID domainUser.ID

	FetchUserByUsernameFunc func(ctx context.Context, username string) (*domainUser.User, error)
	CreateUserFunc          func(ctx context.Context, req domainUser.User) (*domainUser.User, error)
	DeleteUserFunc          func(ctx context.Context, id domainUser.ID) (*domainUser.User, error)
}

func (r *FakeUserRepository) FetchUserByUUID(context.Context, domainUser.UUID) (*domainUser.User, error) {
	return nil, nil
}
func (r *FakeUserRepository) FetchUserByUsername(ctx context.Context, username string) (*domainUser.User, error) {
	if r.FetchUserByUsernameFunc == nil {
		return nil, errors.New("not used")
	}
	return r.FetchUserByUsernameFunc(ctx, username)
}
func (r *FakeUserRepository) CreateUser(ctx context.Context, req domainUser.User) (*domainUser.User, error) {
	if r.CreateUserFunc == nil {
		return nil, errors.New("not used")
	}
	return r.CreateUserFunc(ctx, req)
}
func (r *FakeUserRepository) FetchInternalID(context.Context, domainUser.UUID) (domainUser.ID, error) {
	return r.InternalID, nil
}
func (r *FakeUserRepository) DeleteUser(ctx context.Context, id domainUser.ID) (*domainUser.User, error) {
	if r.DeleteUserFunc == nil {
		return nil, errors.New("not used")
	}
	return r.DeleteUserFunc(ctx, id)
}

type FakeBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte

	WriteErr  error
	DeleteErr error
	OpenErr   error

	WriteFunc func(ctx context.Context, key string, r io.Reader) (int64, error)
}

func NewFakeBlobStore() *FakeBlobStore { return &FakeBlobStore{blobs: map[string][]byte{}} }

func (s *FakeBlobStore) Write(ctx context.Context, key string, r io.Reader) (int64, error) {
	if s.WriteFunc != nil {
		return s.WriteFunc(ctx, key, r)
	}
	if s.WriteErr != nil {
		return 0, s.WriteErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.blobs[key] = b
	s.mu.Unlock()
	return int64(len(b)), nil
}

func (s *FakeBlobStore) Open(_ context.Context, key string) (io.ReadCloser, int64, error) {
	if s.OpenErr != nil {
		return nil, 0, s.OpenErr
	}
	s.mu.Lock()
	b, ok := s.blobs[key]
	s.mu.Unlock()
	if !ok {
		return nil, 0, fs.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(b)), int64(len(b)), nil
}

func (s *FakeBlobStore) Delete(_ context.Context, key string) error {
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[key]; !ok {
		return fs.ErrNotExist
	}
	delete(s.blobs, key)
	return nil
}

func (s *FakeBlobStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[key]
	return ok
}

type FakeMQ struct{ in chan mq.Event }

func NewFakeMQ() *FakeMQ                                { return &FakeMQ{in: make(chan mq.Event, 32)} }
func (f *FakeMQ) Connect(context.Context, string) error { return nil }
func (f *FakeMQ) Init() error                           { return nil }
func (f *FakeMQ) PublisherWorker(context.Context)       {}
func (f *FakeMQ) GetInputChan() chan mq.Event           { return f.in }
func (f *FakeMQ) GetConn() *amqp091.Connection          { return nil }

func testCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_counters"}, []string{"result"})
}

func makeFileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var b bytes.Buffer
	w := multipart.NewWriter(&b)
	fw, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&b, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File["file"][0]
}

type fileServiceDeps struct {
	files *FakeFileRepository
	users *FakeUserRepository
	blobs *FakeBlobStore
	mq    *FakeMQ
}

func newFileService(t *testing.T, cfg config.Storage) (ports.FileService, fileServiceDeps) {
	t.Helper()

	deps := fileServiceDeps{
		files: NewFakeFileRepository(),
		users: &FakeUserRepository{InternalID: 1},
		blobs: NewFakeBlobStore(),
		mq:    NewFakeMQ(),
	}
	svc := NewFileService(deps.blobs, deps.files, deps.users, cfg, deps.mq, testCounter(), zap.NewNop())
	return svc, deps
}

func allowAllStorage() config.Storage {
	return config.Storage{UploadRoot: "/unused", AllowAll: true}
}

// ---- ingestion ----

func TestFileService_Upload(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	content := []byte("pretend this is a pdf")

	svc, deps := newFileService(t, config.Storage{
		UploadRoot:        "/unused",
		AllowedExtensions: map[string]struct{}{".pdf": {}},
	})

	out, err := svc.Upload(ctx, owner, makeFileHeader(t, "Q3 Report.PDF", content), ports.UploadMeta{IsPublic: false})
	require.NoError(t, err)

	assert.Equal(t, "q3-report.pdf", out.OriginalFilename)
	assert.Len(t, out.StoredFilename, 32)
	assert.NotContains(t, out.StoredFilename, ".")
	assert.Equal(t, storage.ContentDigest(content), out.ContentDigest)
	assert.Equal(t, uint64(len(content)), out.SizeBytes)
	assert.False(t, out.IsPublic)

	require.True(t, deps.blobs.has(out.StoredFilename), "blob written under storage token")
	require.True(t, deps.files.hasToken(out.StoredFilename), "record persisted")
}

func TestFileService_Upload_Validation(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()

	tests := []struct {
		name    string
		cfg     config.Storage
		fh      *multipart.FileHeader
		wantErr error
	}{
		{
			name:    "nil file",
			cfg:     allowAllStorage(),
			fh:      nil,
			wantErr: domainFile.ErrEmptyFilename,
		},
		{
			name:    "blank filename",
			cfg:     allowAllStorage(),
			fh:      &multipart.FileHeader{Filename: "   ", Size: 3},
			wantErr: domainFile.ErrEmptyFilename,
		},
		{
			name:    "extension not in allow-list",
			cfg:     config.Storage{AllowedExtensions: map[string]struct{}{".pdf": {}}},
			fh:      &multipart.FileHeader{Filename: "evil.exe", Size: 3},
			wantErr: domainFile.ErrExtensionNotAllowed,
		},
		{
			name:    "allow-list match is case-insensitive",
			cfg:     config.Storage{AllowedExtensions: map[string]struct{}{".pdf": {}}, MaxUploadBytes: 1},
			fh:      &multipart.FileHeader{Filename: "x.PDF", Size: 2},
			wantErr: domainFile.ErrTooLarge, // got past the extension check
		},
		{
			name:    "empty allow-list rejects everything",
			cfg:     config.Storage{AllowedExtensions: map[string]struct{}{}},
			fh:      &multipart.FileHeader{Filename: "anything.txt", Size: 3},
			wantErr: domainFile.ErrExtensionNotAllowed,
		},
		{
			name:    "over the size limit",
			cfg:     config.Storage{AllowAll: true, MaxUploadBytes: 10},
			fh:      &multipart.FileHeader{Filename: "big.txt", Size: 11},
			wantErr: domainFile.ErrTooLarge,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			svc, deps := newFileService(t, tt.cfg)

			_, err := svc.Upload(ctx, owner, tt.fh, ports.UploadMeta{})
			require.ErrorIs(t, err, tt.wantErr)
			require.Empty(t, deps.blobs.blobs, "no blob on validation failure")
			require.Empty(t, deps.files.rows, "no record on validation failure")
		})
	}
}

func TestFileService_Upload_ZeroLimitMeansUnlimited(t *testing.T) {
	svc, _ := newFileService(t, config.Storage{AllowAll: true, MaxUploadBytes: 0})

	big := bytes.Repeat([]byte("a"), 1<<20)
	_, err := svc.Upload(context.Background(), uuid.New(), makeFileHeader(t, "big.bin", big), ports.UploadMeta{})
	require.NoError(t, err)
}

func TestFileService_Upload_BlobWriteFailureRollsBackRecord(t *testing.T) {
	svc, deps := newFileService(t, allowAllStorage())
	deps.blobs.WriteErr = errors.New("disk full")

	_, err := svc.Upload(context.Background(), uuid.New(), makeFileHeader(t, "doc.txt", []byte("x")), ports.UploadMeta{})
	require.ErrorIs(t, err, domainFile.ErrStorageUnavailable)

	require.Empty(t, deps.files.rows, "metadata row compensated after failed blob write")
	require.Empty(t, deps.blobs.blobs)
}

func TestFileService_Upload_RollbackSurvivesCanceledRequest(t *testing.T) {
	svc, deps := newFileService(t, allowAllStorage())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Client hangs up mid-write: the request context dies and the write fails.
	deps.blobs.WriteFunc = func(context.Context, string, io.Reader) (int64, error) {
		cancel()
		return 0, errors.New("write aborted")
	}
	// The repo honors context cancellation the way a real pgx pool does.
	deps.files.DeleteFileFunc = func(dctx context.Context, id domainFile.UUID) error {
		if err := dctx.Err(); err != nil {
			return err
		}
		return deps.files.remove(id)
	}

	_, err := svc.Upload(ctx, uuid.New(), makeFileHeader(t, "doc.txt", []byte("x")), ports.UploadMeta{})
	require.ErrorIs(t, err, domainFile.ErrStorageUnavailable)

	require.Empty(t, deps.files.rows, "compensation must run even after the request context is gone")
	require.Empty(t, deps.blobs.blobs)
}

func TestFileService_Upload_RetriesOnceOnTokenCollision(t *testing.T) {
	svc, deps := newFileService(t, allowAllStorage())

	var tokens []string
	calls := 0
	deps.files.CreateFileFunc = func(ctx context.Context, ownerID domainUser.ID, req *domainFile.File) (*domainFile.File, error) {
		calls++
		tokens = append(tokens, req.StoredFilename)
		if calls == 1 {
			return nil, domainFile.ErrStoredNameConflict
		}
		return deps.files.insert(req.OwnerUUID, req)
	}

	_, err := svc.Upload(context.Background(), uuid.New(), makeFileHeader(t, "doc.txt", []byte("x")), ports.UploadMeta{})
	require.NoError(t, err)
	require.Equal(t, 2, calls)
	require.NotEqual(t, tokens[0], tokens[1], "retry must use a fresh token")
}

func TestFileService_Upload_SecondCollisionSurfaces(t *testing.T) {
	svc, deps := newFileService(t, allowAllStorage())
	deps.files.CreateFileFunc = func(context.Context, domainUser.ID, *domainFile.File) (*domainFile.File, error) {
		return nil, domainFile.ErrStoredNameConflict
	}

	_, err := svc.Upload(context.Background(), uuid.New(), makeFileHeader(t, "doc.txt", []byte("x")), ports.UploadMeta{})
	require.ErrorIs(t, err, domainFile.ErrStoredNameConflict)
	require.Empty(t, deps.blobs.blobs, "no blob written when the record never landed")
}

// ---- retrieval / deletion ----

func uploadFixture(t *testing.T, svc ports.FileService, owner uuid.UUID, name string, content []byte, public bool) *domainFile.File {
	t.Helper()
	out, err := svc.Upload(context.Background(), owner, makeFileHeader(t, name, content), ports.UploadMeta{IsPublic: public})
	require.NoError(t, err)
	return out
}

func TestFileService_Download_Scenario(t *testing.T) {
	ctx := context.Background()
	ownerA := uuid.New()
	userB := uuid.New()
	content := []byte("private report body")

	svc, _ := newFileService(t, allowAllStorage())
	f := uploadFixture(t, svc, ownerA, "report.pdf", content, false)

	t.Run("anonymous gets AuthenticationRequired", func(t *testing.T) {
		_, err := svc.Download(ctx, f.UUID, domainFile.Anonymous())
		require.ErrorIs(t, err, domainFile.ErrAuthenticationRequired)
	})

	t.Run("other user gets Forbidden", func(t *testing.T) {
		_, err := svc.Download(ctx, f.UUID, domainFile.AuthenticatedAs(userB))
		require.ErrorIs(t, err, domainFile.ErrForbidden)
	})

	t.Run("owner gets the original bytes and name", func(t *testing.T) {
		dl, err := svc.Download(ctx, f.UUID, domainFile.AuthenticatedAs(ownerA))
		require.NoError(t, err)
		defer dl.Content.Close()

		got, err := io.ReadAll(dl.Content)
		require.NoError(t, err)
		assert.Equal(t, content, got)
		assert.Equal(t, "report.pdf", dl.File.OriginalFilename)
	})

	t.Run("public file readable by everyone", func(t *testing.T) {
		pub := uploadFixture(t, svc, ownerA, "notes.txt", []byte("open"), true)

		for _, r := range []domainFile.Requester{domainFile.Anonymous(), domainFile.AuthenticatedAs(userB)} {
			dl, err := svc.Download(ctx, pub.UUID, r)
			require.NoError(t, err)
			dl.Content.Close()
		}
	})
}

func TestFileService_Download_MissingRecordAndBlob(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	svc, deps := newFileService(t, allowAllStorage())

	t.Run("unknown id is NotFound", func(t *testing.T) {
		_, err := svc.Download(ctx, uuid.New(), domainFile.Anonymous())
		require.ErrorIs(t, err, domainFile.ErrNotFound)
	})

	t.Run("record without blob degrades to NotFound", func(t *testing.T) {
		f := uploadFixture(t, svc, owner, "a.txt", []byte("x"), true)
		require.NoError(t, deps.blobs.Delete(ctx, f.StoredFilename))

		_, err := svc.Download(ctx, f.UUID, domainFile.AuthenticatedAs(owner))
		require.ErrorIs(t, err, domainFile.ErrNotFound)
	})

	t.Run("storage fault is retryable, not NotFound", func(t *testing.T) {
		f := uploadFixture(t, svc, owner, "b.txt", []byte("x"), true)
		deps.blobs.OpenErr = errors.New("io timeout")
		defer func() { deps.blobs.OpenErr = nil }()

		_, err := svc.Download(ctx, f.UUID, domainFile.AuthenticatedAs(owner))
		require.ErrorIs(t, err, domainFile.ErrStorageUnavailable)
	})
}

func TestFileService_Delete(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()

	t.Run("non-owner is Forbidden and nothing is removed", func(t *testing.T) {
		svc, deps := newFileService(t, allowAllStorage())
		f := uploadFixture(t, svc, owner, "keep.txt", []byte("x"), false)

		err := svc.Delete(ctx, f.UUID, domainFile.AuthenticatedAs(stranger))
		require.ErrorIs(t, err, domainFile.ErrForbidden)
		require.True(t, deps.blobs.has(f.StoredFilename))
		require.True(t, deps.files.hasToken(f.StoredFilename))
	})

	t.Run("owner delete removes blob and record", func(t *testing.T) {
		svc, deps := newFileService(t, allowAllStorage())
		f := uploadFixture(t, svc, owner, "gone.txt", []byte("x"), false)

		require.NoError(t, svc.Delete(ctx, f.UUID, domainFile.AuthenticatedAs(owner)))
		require.False(t, deps.blobs.has(f.StoredFilename))
		require.False(t, deps.files.hasToken(f.StoredFilename))

		err := svc.Delete(ctx, f.UUID, domainFile.AuthenticatedAs(owner))
		require.ErrorIs(t, err, domainFile.ErrNotFound)
	})

	t.Run("missing blob is idempotent cleanup", func(t *testing.T) {
		svc, deps := newFileService(t, allowAllStorage())
		f := uploadFixture(t, svc, owner, "half.txt", []byte("x"), false)
		require.NoError(t, deps.blobs.Delete(ctx, f.StoredFilename))

		require.NoError(t, svc.Delete(ctx, f.UUID, domainFile.AuthenticatedAs(owner)))
		require.False(t, deps.files.hasToken(f.StoredFilename))
	})

	t.Run("blob store fault keeps the record for a retry", func(t *testing.T) {
		svc, deps := newFileService(t, allowAllStorage())
		f := uploadFixture(t, svc, owner, "stuck.txt", []byte("x"), false)
		deps.blobs.DeleteErr = errors.New("io timeout")

		err := svc.Delete(ctx, f.UUID, domainFile.AuthenticatedAs(owner))
		require.ErrorIs(t, err, domainFile.ErrStorageUnavailable)
		require.True(t, deps.files.hasToken(f.StoredFilename), "record intact, operation retryable")
	})
}

func TestFileService_FindPublicFiles(t *testing.T) {
	svc, _ := newFileService(t, allowAllStorage())
	owner := uuid.New()

	uploadFixture(t, svc, owner, "open.txt", []byte("1"), true)
	uploadFixture(t, svc, owner, "hidden.txt", []byte("2"), false)

	fls, err := svc.FindPublicFiles(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, fls, 1)
	require.Equal(t, "open.txt", fls[0].OriginalFilename)
}
