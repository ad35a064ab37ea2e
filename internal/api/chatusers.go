package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/RezaAbdollahi2002/homebase-chat-go/internal/types"
)

// EnsureChatUser registers the chat identity backing the local participant.
// The backend creates the record on first call and is tolerant of repeats.
func EnsureChatUser(ctx context.Context, httpClient *http.Client, baseURL string, req types.EnsureChatUserRequest) (*types.ChatUser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateEnsureChatUser(req); err != nil {
		return nil, err
	}
	form := url.Values{}
	if req.EmployeeID != nil {
		form.Set("employee_id", strconv.FormatInt(*req.EmployeeID, 10))
	}
	if req.EmployerID != nil {
		form.Set("employer_id", strconv.FormatInt(*req.EmployerID, 10))
	}
	form.Set("role", string(req.Role))
	form.Set("display_name", req.DisplayName)

	endpoint := fmt.Sprintf("%s/api/chat/chatuser", baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("ensure chat user: status %d", resp.StatusCode)
	}
	var cu types.ChatUser
	if err := json.NewDecoder(resp.Body).Decode(&cu); err != nil {
		return nil, err
	}
	return &cu, nil
}

// GetChatUser retrieves a chat identity by ID.
func GetChatUser(ctx context.Context, httpClient *http.Client, baseURL string, userID int64) (*types.ChatUser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateID(userID, "user id"); err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/api/chat/chatuser/%d", baseURL, userID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, types.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get chat user: status %d", resp.StatusCode)
	}
	var cu types.ChatUser
	if err := json.NewDecoder(resp.Body).Decode(&cu); err != nil {
		return nil, err
	}
	return &cu, nil
}
