package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/RezaAbdollahi2002/homebase-chat-go/internal/types"
)

// ListConversations returns the conversations visible to userID in the
// server's order. The order encodes recency and must be preserved.
func ListConversations(ctx context.Context, httpClient *http.Client, baseURL string, userID int64) ([]types.Conversation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateID(userID, "user id"); err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/api/chat/conversations/%d", baseURL, userID)
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
		return nil, fmt.Errorf("list conversations: status %d", resp.StatusCode)
	}
	var convs []types.Conversation
	if err := json.NewDecoder(resp.Body).Decode(&convs); err != nil {
		return nil, err
	}
	return convs, nil
}

// CreateConversation creates a direct or group conversation. Validation
// happens before any network call.
func CreateConversation(ctx context.Context, httpClient *http.Client, baseURL string, req types.CreateConversationRequest) (*types.Conversation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateCreateConversation(req); err != nil {
		return nil, err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/api/chat/conversation", baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("create conversation: status %d", resp.StatusCode)
	}
	var conv types.Conversation
	if err := json.NewDecoder(resp.Body).Decode(&conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListParticipants returns the confirmed members of a conversation.
func ListParticipants(ctx context.Context, httpClient *http.Client, baseURL string, conversationID int64) ([]types.ConversationMember, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateID(conversationID, "conversation id"); err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/api/chat/conversation/%d/participants", baseURL, conversationID)
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
		return nil, fmt.Errorf("list participants: status %d", resp.StatusCode)
	}
	var members []types.ConversationMember
	if err := json.NewDecoder(resp.Body).Decode(&members); err != nil {
		return nil, err
	}
	return members, nil
}

// RenameGroup changes a group conversation's display name. Only a group
// admin may rename; the server enforces that.
func RenameGroup(ctx context.Context, httpClient *http.Client, baseURL string, conversationID, requesterID int64, newName string) (*types.RenameGroupResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateID(conversationID, "conversation id"); err != nil {
		return nil, err
	}
	if err := types.ValidateID(requesterID, "requester id"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(newName) == "" {
		return nil, fmt.Errorf("group name required")
	}
	form := url.Values{}
	form.Set("requester_id", strconv.FormatInt(requesterID, 10))
	form.Set("new_name", newName)

	var out types.RenameGroupResponse
	if err := postForm(ctx, httpClient, fmt.Sprintf("%s/api/chat/conversation/%d/rename", baseURL, conversationID), form, "rename group", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddParticipants adds chat users to a group conversation.
func AddParticipants(ctx context.Context, httpClient *http.Client, baseURL string, conversationID, requesterID int64, userIDs []int64) (*types.AddParticipantsResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateID(conversationID, "conversation id"); err != nil {
		return nil, err
	}
	if err := types.ValidateID(requesterID, "requester id"); err != nil {
		return nil, err
	}
	if len(userIDs) == 0 {
		return nil, fmt.Errorf("no participants provided")
	}
	ids := make([]string, len(userIDs))
	for i, id := range userIDs {
		if err := types.ValidateID(id, "participant id"); err != nil {
			return nil, err
		}
		ids[i] = strconv.FormatInt(id, 10)
	}
	form := url.Values{}
	form.Set("requester_id", strconv.FormatInt(requesterID, 10))
	form.Set("participants", strings.Join(ids, ","))

	var out types.AddParticipantsResponse
	if err := postForm(ctx, httpClient, fmt.Sprintf("%s/api/chat/conversation/%d/participants/add", baseURL, conversationID), form, "add participants", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveParticipant removes one chat user from a group conversation.
func RemoveParticipant(ctx context.Context, httpClient *http.Client, baseURL string, conversationID, requesterID, userID int64) (*types.RemoveParticipantResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateID(conversationID, "conversation id"); err != nil {
		return nil, err
	}
	if err := types.ValidateID(requesterID, "requester id"); err != nil {
		return nil, err
	}
	if err := types.ValidateID(userID, "user id"); err != nil {
		return nil, err
	}
	form := url.Values{}
	form.Set("requester_id", strconv.FormatInt(requesterID, 10))
	form.Set("user_id", strconv.FormatInt(userID, 10))

	var out types.RemoveParticipantResponse
	if err := postForm(ctx, httpClient, fmt.Sprintf("%s/api/chat/conversation/%d/participants/remove", baseURL, conversationID), form, "remove participant", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LeaveConversation removes the caller from a group conversation. If the
// leaving user was the admin the server promotes the earliest joined member.
func LeaveConversation(ctx context.Context, httpClient *http.Client, baseURL string, conversationID, userID int64) (*types.LeaveConversationResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateID(conversationID, "conversation id"); err != nil {
		return nil, err
	}
	if err := types.ValidateID(userID, "user id"); err != nil {
		return nil, err
	}
	form := url.Values{}
	form.Set("user_id", strconv.FormatInt(userID, 10))

	var out types.LeaveConversationResponse
	if err := postForm(ctx, httpClient, fmt.Sprintf("%s/api/chat/conversation/%d/leave", baseURL, conversationID), form, "leave conversation", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetAdmin grants or revokes the admin role of a group member.
func SetAdmin(ctx context.Context, httpClient *http.Client, baseURL string, conversationID, requesterID, targetUserID int64, makeAdmin bool) (*types.SetAdminResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateID(conversationID, "conversation id"); err != nil {
		return nil, err
	}
	if err := types.ValidateID(requesterID, "requester id"); err != nil {
		return nil, err
	}
	if err := types.ValidateID(targetUserID, "target user id"); err != nil {
		return nil, err
	}
	form := url.Values{}
	form.Set("requester_id", strconv.FormatInt(requesterID, 10))
	form.Set("target_user_id", strconv.FormatInt(targetUserID, 10))
	form.Set("make_admin", strconv.FormatBool(makeAdmin))

	var out types.SetAdminResponse
	if err := postForm(ctx, httpClient, fmt.Sprintf("%s/api/chat/conversation/%d/admin", baseURL, conversationID), form, "set admin", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteConversation removes a conversation. Direct conversations may be
// deleted by either participant, groups only by an admin.
func DeleteConversation(ctx context.Context, httpClient *http.Client, baseURL string, conversationID, requesterID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := types.ValidateID(conversationID, "conversation id"); err != nil {
		return err
	}
	if err := types.ValidateID(requesterID, "requester id"); err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/api/chat/remover/conversation/%d?requester_id=%d", baseURL, conversationID, requesterID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("delete conversation: status %d", resp.StatusCode)
	}
	return nil
}

// postForm issues one urlencoded POST and decodes the JSON response into out.
func postForm(ctx context.Context, httpClient *http.Client, endpoint string, form url.Values, operation string, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: status %d", operation, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
