package review

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/workhq/workplace-bot/internal"
	"github.com/workhq/workplace-bot/internal/discord"
	"github.com/workhq/workplace-bot/internal/sheets"
)

const (
	contentDecisionsRange = "'Content Decisions'!A:H"
	assetDecisionsRange   = "'Asset Decisions'!A:H"
)

const (
	KindContent = "content"
	KindAsset   = "asset"
)

type Gateway interface {
	Append(ctx context.Context, readRange string, mode sheets.ValueInput, row []interface{}) error
}

// Service records content and asset review decisions. Unlike leave and WFH
// there is no request row to look up: the approval card itself is the record,
// so decisions are parsed straight out of the card markdown.
type Service struct {
	gateway Gateway
	logger  *slog.Logger
	clock   func() time.Time
}

func NewService(gateway Gateway, logger *slog.Logger, clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{gateway: gateway, logger: logger, clock: clock}
}

// Decision is the parsed and decided review, returned so callers can
// broadcast it.
type Decision struct {
	Kind      string
	Decision  string
	Reviewer  string
	Comments  string
	Requester string
	Subject   string
	Filename  string
	FileURL   string
}

// RecordContentDecision parses the content request card and appends the
// decision row: [ts, decision, reviewer, requester, topic, filename, url, comments].
func (s *Service) RecordContentDecision(ctx context.Context, cardContent, decision, reviewer, comments string) (Decision, error) {
	card := discord.ParseContentCard(cardContent)
	if card.Requester == "" {
		return Decision{}, apperrors.NewValidationError("could not parse the request details", apperrors.ErrCodeCardParse)
	}
	row := []interface{}{
		sheets.Timestamp(s.clock()), decision, reviewer, card.Requester, card.Topic, card.Filename, card.FileURL, comments,
	}
	if err := s.gateway.Append(ctx, contentDecisionsRange, sheets.UserEntered, row); err != nil {
		return Decision{}, err
	}
	s.logger.Info("content decision recorded",
		"decision", decision, "reviewer", reviewer, "requester", card.Requester)
	return Decision{
		Kind:      KindContent,
		Decision:  decision,
		Reviewer:  reviewer,
		Comments:  comments,
		Requester: card.Requester,
		Subject:   card.Topic,
		Filename:  card.Filename,
		FileURL:   card.FileURL,
	}, nil
}

// RecordAssetDecision is the asset review counterpart:
// [ts, decision, reviewer, requester, asset_name, filename, url, comments].
func (s *Service) RecordAssetDecision(ctx context.Context, cardContent, decision, reviewer, comments string) (Decision, error) {
	card := discord.ParseAssetCard(cardContent)
	if card.Requester == "" {
		return Decision{}, apperrors.NewValidationError("could not parse the request details", apperrors.ErrCodeCardParse)
	}
	row := []interface{}{
		sheets.Timestamp(s.clock()), decision, reviewer, card.Requester, card.AssetName, card.Filename, card.FileURL, comments,
	}
	if err := s.gateway.Append(ctx, assetDecisionsRange, sheets.UserEntered, row); err != nil {
		return Decision{}, err
	}
	s.logger.Info("asset decision recorded",
		"decision", decision, "reviewer", reviewer, "requester", card.Requester)
	return Decision{
		Kind:      KindAsset,
		Decision:  decision,
		Reviewer:  reviewer,
		Comments:  comments,
		Requester: card.Requester,
		Subject:   card.AssetName,
		Filename:  card.Filename,
		FileURL:   card.FileURL,
	}, nil
}
