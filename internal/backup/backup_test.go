package backup

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dukerupert/dauphindash/internal/database"
	"github.com/dukerupert/dauphindash/internal/model"
	"github.com/dukerupert/dauphindash/internal/store"
	"github.com/google/go-cmp/cmp"
)

// mockS3Client implements s3Client for testing.
type mockS3Client struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	getErr  error
	delErr  error
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, &s3NotFound{}
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader(string(data))),
	}, nil
}

func (m *mockS3Client) DeleteObject(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if m.delErr != nil {
		return nil, m.delErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (m *mockS3Client) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type s3NotFound struct{}

func (e *s3NotFound) Error() string { return "NoSuchKey" }

type memSource struct {
	mu         sync.Mutex
	days       model.Store
	replaceErr error
}

func (s *memSource) Snapshot() model.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.days.Clone()
}

func (s *memSource) Replace(st model.Store) error {
	if s.replaceErr != nil {
		return s.replaceErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.days = st
	return nil
}

var validS3 = S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret", Region: "us-east-1"}

func newTestManager(t *testing.T, src Snapshotter, cb StatusCallback) (*Manager, *mockS3Client) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	m := NewManager(Config{S3: validS3, Passphrase: "hunter2"}, src, store.NewBackupStore(db), cb)
	mock := newMockS3()
	m.client = mock
	return m, mock
}

func sampleDays() model.Store {
	return model.Store{
		"2026-10-14": {Weight: model.Float(152.4), LeetCode: 2},
		"2026-10-15": {Workout: true, LeetCode: 1},
	}
}

func TestManagerStateLifecycle(t *testing.T) {
	if m := NewManager(Config{}, nil, nil, nil); m.Status().State != StateDisabled {
		t.Errorf("state = %q, want %q", m.Status().State, StateDisabled)
	}
	// S3 without a passphrase stays disabled.
	if m := NewManager(Config{S3: validS3}, nil, nil, nil); m.Enabled() {
		t.Error("manager without passphrase should be disabled")
	}
	m := NewManager(Config{S3: validS3, Passphrase: "p"}, nil, nil, nil)
	if m.Status().State != StateIdle || !m.Enabled() {
		t.Errorf("state = %q, want %q", m.Status().State, StateIdle)
	}
}

func TestManagerStatusCallback(t *testing.T) {
	var received []Status
	var mu sync.Mutex
	cb := func(s Status) {
		mu.Lock()
		received = append(received, s)
		mu.Unlock()
	}

	m, _ := newTestManager(t, &memSource{days: sampleDays()}, cb)
	if _, err := m.RunNow(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 2 {
		t.Fatalf("received %d callbacks, want 2", len(received))
	}
	if received[0].State != StateRunning || !received[0].InProgress {
		t.Errorf("first callback = %+v, want running", received[0])
	}
	if received[1].State != StateIdle || received[1].LastBackup == nil {
		t.Errorf("second callback = %+v, want idle with last backup", received[1])
	}
}

func TestRunNowAndRestore(t *testing.T) {
	src := &memSource{days: sampleDays()}
	m, mock := newTestManager(t, src, nil)
	ctx := context.Background()

	b, err := m.RunNow(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if b.Status != model.BackupStatusCompleted || b.RecordCount != 2 || b.SizeBytes == 0 {
		t.Errorf("backup = %+v", b)
	}
	if !strings.HasPrefix(b.S3Key, "dauphindash/") || !strings.HasSuffix(b.S3Key, ".json.enc") {
		t.Errorf("s3 key = %q", b.S3Key)
	}
	if strings.Contains(string(mock.objects[b.S3Key]), "leetcode") {
		t.Error("uploaded object is not encrypted")
	}

	src.days = model.Store{"2026-01-01": {LeetCode: 9}}
	n, err := m.Restore(ctx, b.ID)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if n != 2 {
		t.Errorf("restored %d records, want 2", n)
	}
	if diff := cmp.Diff(sampleDays(), src.days); diff != "" {
		t.Errorf("restored store mismatch (-want +got):\n%s", diff)
	}

	list, err := m.List(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != b.ID {
		t.Errorf("list = %+v", list)
	}
}

func TestRunNowUploadFailure(t *testing.T) {
	m, mock := newTestManager(t, &memSource{days: sampleDays()}, nil)
	mock.putErr = errors.New("bucket gone")

	if _, err := m.RunNow(context.Background()); err == nil {
		t.Fatal("expected upload error")
	}
	if st := m.Status(); st.State != StateError || !strings.Contains(st.Error, "bucket gone") {
		t.Errorf("status = %+v", st)
	}

	list, err := m.List(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Status != model.BackupStatusFailed {
		t.Fatalf("list = %+v", list)
	}
	if _, err := m.Restore(context.Background(), list[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("restore failed backup: err = %v, want ErrNotFound", err)
	}
}

func TestRestoreWrongPassphrase(t *testing.T) {
	src := &memSource{days: sampleDays()}
	m, _ := newTestManager(t, src, nil)
	b, err := m.RunNow(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	m.cfg.Passphrase = "not it"
	src.days = model.Store{}
	if _, err := m.Restore(context.Background(), b.ID); !errors.Is(err, ErrDecrypt) {
		t.Errorf("err = %v, want ErrDecrypt", err)
	}
	if len(src.days) != 0 {
		t.Error("store replaced despite decrypt failure")
	}
}

func TestRestoreUnknownID(t *testing.T) {
	m, _ := newTestManager(t, &memSource{days: model.Store{}}, nil)
	if _, err := m.Restore(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDisabledOperations(t *testing.T) {
	m := NewManager(Config{}, &memSource{}, nil, nil)
	if _, err := m.RunNow(context.Background()); !errors.Is(err, ErrDisabled) {
		t.Errorf("RunNow err = %v, want ErrDisabled", err)
	}
	if _, err := m.Restore(context.Background(), 1); !errors.Is(err, ErrDisabled) {
		t.Errorf("Restore err = %v, want ErrDisabled", err)
	}
	if n, err := m.Cleanup(context.Background()); n != 0 || err != nil {
		t.Errorf("Cleanup = %d, %v", n, err)
	}
}

func TestCleanupRemovesExpired(t *testing.T) {
	m, mock := newTestManager(t, &memSource{days: sampleDays()}, nil)
	ctx := context.Background()
	if _, err := m.RunNow(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}

	if n, err := m.Cleanup(ctx); err != nil || n != 0 {
		t.Fatalf("fresh cleanup = %d, %v; want 0", n, err)
	}

	m.now = func() time.Time { return time.Now().AddDate(0, 0, defaultRetention+1) }
	n, err := m.Cleanup(ctx)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if n != 1 || mock.count() != 0 {
		t.Errorf("cleanup removed %d records, %d objects left", n, mock.count())
	}
}

func TestManagerStopSafety(t *testing.T) {
	m, _ := newTestManager(t, &memSource{days: model.Store{}}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	time.Sleep(20 * time.Millisecond)
	cancel()
	m.Stop()

	// Double stop should not panic
	m.Stop()
}

func TestManagerDisabledNoStart(t *testing.T) {
	m := NewManager(Config{}, nil, nil, nil)
	m.Start(context.Background())
	m.Stop()
}
