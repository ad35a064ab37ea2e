package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	interrors "github.com/RezaAbdollahi2002/homebase-chat-go/internal/errors"
	"github.com/RezaAbdollahi2002/homebase-chat-go/internal/types"
)

// ListMessages retrieves the message history of a conversation, oldest first.
func ListMessages(ctx context.Context, httpClient *http.Client, baseURL string, conversationID int64) ([]types.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateID(conversationID, "conversation id"); err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/api/chat/messages/%d", baseURL, conversationID)
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
		return nil, fmt.Errorf("list messages: status %d", resp.StatusCode)
	}
	var msgs []types.Message
	if err := json.NewDecoder(resp.Body).Decode(&msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// SendMessage persists one message as a multipart form (the attachment, when
// present, travels in the same request). Failures are classified so the send
// queue can decide between retrying and failing fast.
func SendMessage(ctx context.Context, httpClient *http.Client, baseURL string, req types.SendMessageRequest) (*types.SendMessageResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateSendMessage(req); err != nil {
		return nil, err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("conversation_id", strconv.FormatInt(req.ConversationID, 10)); err != nil {
		return nil, err
	}
	if err := mw.WriteField("sender_id", strconv.FormatInt(req.SenderID, 10)); err != nil {
		return nil, err
	}
	if req.Text != "" {
		if err := mw.WriteField("text", req.Text); err != nil {
			return nil, err
		}
	}
	if req.Attachment != nil {
		fw, err := mw.CreateFormFile("file", req.Attachment.FileName)
		if err != nil {
			return nil, err
		}
		if _, err := fw.Write(req.Attachment.Data); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/api/chat/message", baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, interrors.NewNetworkError("send message", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, interrors.NewHTTPError(resp.StatusCode, string(b), "send message")
	}
	var ack types.SendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return nil, err
	}
	return &ack, nil
}
