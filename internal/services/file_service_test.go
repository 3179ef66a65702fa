package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/storage"
	"github.com/hireloop/hireloop/internal/utils"
)

type memBucket struct {
	mu       sync.Mutex
	objects  map[string]string
	fetchErr error
}

func newMemBucket() *memBucket { return &memBucket{objects: map[string]string{}} }

func (b *memBucket) Upload(_ context.Context, name, _ string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[name] = string(data)
	return name, nil
}

func (b *memBucket) SignedGetURL(_ context.Context, name string, _ time.Duration) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.objects[name]; !ok {
		return "", utils.ErrNotFound
	}
	return "https://blobs.test/" + name + "?sig=get", nil
}

func (b *memBucket) SignedPutURL(_ context.Context, name, _ string, _ time.Duration) (string, error) {
	return "https://blobs.test/" + name + "?sig=put", nil
}

func (b *memBucket) Fetch(_ context.Context, url string) (*storage.Blob, error) {
	if b.fetchErr != nil {
		return nil, b.fetchErr
	}
	name := strings.TrimSuffix(strings.TrimPrefix(url, "https://blobs.test/"), "?sig=get")
	b.mu.Lock()
	body := b.objects[name]
	b.mu.Unlock()
	return &storage.Blob{Body: io.NopCloser(strings.NewReader(body)), ContentType: "application/pdf", ContentLength: int64(len(body))}, nil
}

func TestResumeUploadAndDownload(t *testing.T) {
	ctx := context.Background()
	h := newHarness(1)
	c := createJane(t, h, h.seedJob("Backend Engineer"))

	bucket := newMemBucket()
	files := NewFileService(bucket, bucket, bucket, h.candidateSvc, time.Minute)

	pdf := "%PDF-1.7 resume"
	updated, err := files.UploadResume(ctx, actorOf(recruiter), c.ID, "Jane CV.PDF", int64(len(pdf)), "application/pdf", strings.NewReader(pdf))
	require.NoError(t, err)
	require.NotEmpty(t, updated.ResumeFileID)
	assert.True(t, strings.HasPrefix(updated.ResumeFileID, "resumes/"+c.ID+"/"))
	assert.True(t, strings.HasSuffix(updated.ResumeFileID, ".pdf"))
	assert.Equal(t, 1, len(h.activity.byAction(models.ActionFileAttached)))

	url, expires, err := files.GetURL(ctx, updated.ResumeFileID)
	require.NoError(t, err)
	assert.Contains(t, url, "sig=get")
	assert.True(t, expires.After(time.Now()))

	blob, err := files.Download(ctx, updated.ResumeFileID)
	require.NoError(t, err)
	defer blob.Body.Close()
	got, _ := io.ReadAll(blob.Body)
	assert.Equal(t, pdf, string(got))
	assert.Equal(t, "application/pdf", blob.ContentType)
}

func TestResumeUploadValidation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(1)
	c := createJane(t, h, h.seedJob("Backend Engineer"))
	bucket := newMemBucket()
	files := NewFileService(bucket, bucket, bucket, h.candidateSvc, 0)

	_, err := files.UploadResume(ctx, actorOf(recruiter), c.ID, "cv.docx", 10, "application/msword", strings.NewReader("x"))
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	_, err = files.UploadResume(ctx, actorOf(recruiter), c.ID, "cv.pdf", MaxResumeBytes+1, "application/pdf", strings.NewReader("x"))
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	_, err = files.UploadResume(ctx, actorOf(recruiter), "nobody", "cv.pdf", 3, "application/pdf", strings.NewReader("pdf"))
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
	assert.Empty(t, bucket.objects)
}

func TestDownloadErrors(t *testing.T) {
	ctx := context.Background()
	bucket := newMemBucket()
	bucket.objects["resumes/c-1/a.pdf"] = "%PDF"
	files := NewFileService(bucket, bucket, bucket, nil, time.Minute)

	_, err := files.Download(ctx, "resumes/c-1/missing.pdf")
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))

	_, err = files.Download(ctx, "../etc/passwd")
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	bucket.fetchErr = errors.New("connection reset")
	_, err = files.Download(ctx, "resumes/c-1/a.pdf")
	assert.True(t, utils.IsCode(err, utils.CodeInternal))
}

func TestGenerateUploadURL(t *testing.T) {
	bucket := newMemBucket()
	files := NewFileService(bucket, bucket, bucket, nil, time.Minute)

	ticket, err := files.GenerateUploadURL(context.Background(), "application/pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ticket.StorageID, "uploads/"))
	assert.Contains(t, ticket.UploadURL, "sig=put")

	_, err = files.GenerateUploadURL(context.Background(), " ")
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	unconfigured := NewFileService(nil, nil, nil, nil, time.Minute)
	_, err = unconfigured.GenerateUploadURL(context.Background(), "application/pdf")
	assert.True(t, utils.IsCode(err, utils.CodeUnavailable))
}
