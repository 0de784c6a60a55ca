package usecase

import (
	"context"

	"instructor-portal/internal/dto/response"

	"go.uber.org/zap"
)

// ResourceService serves the instructor resources page from the content provider.
type ResourceService interface {
	Get(ctx context.Context) (*response.ResourcePageResponse, error)
}

type resourceService struct {
	content ContentProvider
	pageID  string
	log     *zap.Logger
}

func NewResourceService(content ContentProvider, pageID string, log *zap.Logger) ResourceService {
	return &resourceService{
		content: content,
		pageID:  pageID,
		log:     log.With(zap.String("service", "resource")),
	}
}

func (s *resourceService) Get(ctx context.Context) (*response.ResourcePageResponse, error) {
	if s.content == nil || s.pageID == "" {
		return nil, ErrNotFound
	}

	page, err := s.content.RetrievePage(ctx, s.pageID)
	if err != nil {
		s.log.Error("Failed to retrieve resources page", zap.Error(err), zap.String("page_id", s.pageID))
		return nil, newUpstreamError("content", "could not load instructor resources", err)
	}

	blocks, err := s.content.ListBlockChildren(ctx, s.pageID)
	if err != nil {
		s.log.Error("Failed to list resource blocks", zap.Error(err), zap.String("page_id", s.pageID))
		return nil, newUpstreamError("content", "could not load instructor resources", err)
	}

	res := &response.ResourcePageResponse{
		ID:     page.ID,
		Title:  page.Title,
		URL:    page.URL,
		Blocks: make([]response.ResourceBlock, 0, len(blocks)),
	}
	for _, b := range blocks {
		res.Blocks = append(res.Blocks, response.ResourceBlock{
			ID:          b.ID,
			Type:        b.Type,
			Text:        b.Text,
			HasChildren: b.HasChildren,
		})
	}
	return res, nil
}
