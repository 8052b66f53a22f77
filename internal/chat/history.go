package chat

import (
	"context"
	"fmt"
	log "log/slog"
	"strconv"

	"GymChat/internal/api/dto"

	"github.com/go-resty/resty/v2"
)

// HistoryStore 拉取两人之间的历史消息
type HistoryStore struct {
	rest *resty.Client
}

func NewHistoryStore(rest *resty.Client) *HistoryStore {
	return &HistoryStore{rest: rest}
}

// LoadHistory 按时间升序返回会话；失败时返回空切片与 ErrHistoryUnavailable
func (h *HistoryStore) LoadHistory(ctx context.Context, meID, peerID uint64) ([]Message, error) {
	var items []*dto.MessageDTO
	req := h.rest.R().SetContext(ctx).SetPathParams(map[string]string{
		"userA": strconv.FormatUint(meID, 10),
		"userB": strconv.FormatUint(peerID, 10),
	})
	if err := getEnvelope(req, "/messages/{userA}/{userB}", &items); err != nil {
		return []Message{}, fmt.Errorf("%w: %v", ErrHistoryUnavailable, err)
	}

	msgs := make([]Message, 0, len(items))
	for _, item := range items {
		m, err := messageFromDTO(item)
		if err != nil {
			log.WarnContext(ctx, "skip malformed history entry", "err", err)
			continue
		}
		msgs = append(msgs, m)
	}
	sortByTimestamp(msgs)
	return msgs, nil
}
