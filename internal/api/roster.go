package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/RezaAbdollahi2002/homebase-chat-go/internal/types"
)

// FetchTeam retrieves the roster of team members eligible for a new
// conversation, scoped to the requesting participant. The requester is
// excluded from the result by the server.
func FetchTeam(ctx context.Context, httpClient *http.Client, baseURL string, participant types.Participant) ([]types.RosterEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateID(participant.ID, "participant id"); err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/api/chat/team?user_id=%d&role=%s", baseURL, participant.ID, participant.Role)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch team: status %d", resp.StatusCode)
	}
	var tr types.TeamResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, err
	}
	return tr.Team, nil
}
