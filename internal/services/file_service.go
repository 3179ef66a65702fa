package services

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/storage"
	"github.com/hireloop/hireloop/internal/utils"
)

const (
	MaxResumeBytes  = 10 << 20
	resumeMediaType = "application/pdf"
)

type FileService interface {
	GenerateUploadURL(ctx context.Context, contentType string) (*models.UploadTicket, error)
	UploadResume(ctx context.Context, actor models.ActorRef, candidateID, fileName string, size int64, contentType string, r io.Reader) (*models.Candidate, error)
	GetURL(ctx context.Context, storageID string) (string, time.Time, error)
	// Download resolves a signed URL and returns the object body for re-streaming.
	Download(ctx context.Context, storageID string) (*storage.Blob, error)
}

type fileService struct {
	uploader   storage.Uploader
	signer     storage.Signer
	fetcher    storage.Fetcher
	candidates CandidateService
	ttl        time.Duration
	now        func() time.Time
}

func NewFileService(uploader storage.Uploader, signer storage.Signer, fetcher storage.Fetcher, candidates CandidateService, ttl time.Duration) FileService {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &fileService{
		uploader:   uploader,
		signer:     signer,
		fetcher:    fetcher,
		candidates: candidates,
		ttl:        ttl,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func newStorageID(prefix, fileName string) string {
	return prefix + "/" + uuid.NewString() + strings.ToLower(path.Ext(fileName))
}

func validStorageID(id string) bool {
	return id != "" && !strings.HasPrefix(id, "/") && !strings.Contains(id, "..")
}

func (s *fileService) GenerateUploadURL(ctx context.Context, contentType string) (*models.UploadTicket, error) {
	const op = "FileService.GenerateUploadURL"

	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "content_type is required", nil)
	}
	if s.signer == nil {
		return nil, utils.E(utils.CodeUnavailable, op, "file storage is not configured", nil)
	}

	id := newStorageID("uploads", "")
	url, err := s.signer.SignedPutURL(ctx, id, contentType, s.ttl)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to sign upload url", err)
	}
	return &models.UploadTicket{StorageID: id, UploadURL: url, ExpiresAt: s.now().Add(s.ttl)}, nil
}

func (s *fileService) UploadResume(ctx context.Context, actor models.ActorRef, candidateID, fileName string, size int64, contentType string, r io.Reader) (*models.Candidate, error) {
	const op = "FileService.UploadResume"

	if candidateID == "" || r == nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "candidate_id and file are required", nil)
	}
	if size <= 0 || size > MaxResumeBytes {
		return nil, utils.E(utils.CodeInvalidArgument, op, "resume must be between 1 byte and 10MB", nil)
	}
	if !strings.HasPrefix(strings.ToLower(contentType), resumeMediaType) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "resume must be a PDF", nil)
	}
	if s.uploader == nil {
		return nil, utils.E(utils.CodeUnavailable, op, "file storage is not configured", nil)
	}
	if _, err := s.candidates.Get(ctx, candidateID); err != nil {
		return nil, err
	}

	objectName := newStorageID("resumes/"+candidateID, fileName)
	stored, err := s.uploader.Upload(ctx, objectName, resumeMediaType, io.LimitReader(r, MaxResumeBytes))
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to upload resume", err)
	}
	return s.candidates.AttachFile(ctx, actor, candidateID, models.FileResume, stored)
}

func (s *fileService) GetURL(ctx context.Context, storageID string) (string, time.Time, error) {
	const op = "FileService.GetURL"

	if !validStorageID(storageID) {
		return "", time.Time{}, utils.E(utils.CodeInvalidArgument, op, "invalid storage id", nil)
	}
	if s.signer == nil {
		return "", time.Time{}, utils.E(utils.CodeUnavailable, op, "file storage is not configured", nil)
	}
	url, err := s.signer.SignedGetURL(ctx, storageID, s.ttl)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return "", time.Time{}, utils.E(utils.CodeNotFound, op, "file not found", err)
		}
		return "", time.Time{}, utils.E(utils.CodeInternal, op, "failed to sign url", err)
	}
	return url, s.now().Add(s.ttl), nil
}

func (s *fileService) Download(ctx context.Context, storageID string) (*storage.Blob, error) {
	const op = "FileService.Download"

	url, _, err := s.GetURL(ctx, storageID)
	if err != nil {
		return nil, err
	}
	if s.fetcher == nil {
		return nil, utils.E(utils.CodeUnavailable, op, "file fetcher is not configured", nil)
	}
	blob, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to fetch file", err)
	}
	return blob, nil
}
