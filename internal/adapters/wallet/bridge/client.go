package bridge

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/billboard-cli/internal/domain"
	"github.com/bnema/billboard-cli/internal/ports"
	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
)

const (
	maxBridgeResponseBytes = 1 << 20
	pairingKeyBytes        = 32
	clientName             = "billboard-cli"
)

var (
	ErrApprovalTimeout = errors.New("timed out waiting for wallet approval")
	ErrRequestRejected = errors.New("wallet rejected the request")
)

const (
	statusPending  = "pending"
	statusApproved = "approved"
	statusRejected = "rejected"
)

// Client relays a pairing session through an HTTP bridge. The wallet on the
// other end approves the session and signs relayed requests. Session
// details, events and requests travel sealed under the pairing key, which
// only reaches the wallet through the pairing URI.
type Client struct {
	BaseURL         string
	HTTPClient      *http.Client
	RequestTimeout  time.Duration
	PollInterval    time.Duration
	ApprovalTimeout time.Duration
	Logger          *log.Logger
}

var _ ports.RemoteSessionProtocol = Client{}

type createSessionRequest struct {
	Topic    string `json:"topic"`
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
}

type sessionStatusResponse struct {
	Status  string `json:"status"`
	Payload string `json:"payload,omitempty"`
}

// ApprovalPayload is what the wallet seals into an approved session status.
type ApprovalPayload struct {
	Accounts []string `json:"accounts"`
	ChainID  uint64   `json:"chain_id"`
	PeerName string   `json:"peer_name"`
}

type eventsResponse struct {
	Events []sessionEvent `json:"events"`
}

type sessionEvent struct {
	Seq     uint64 `json:"seq"`
	Payload string `json:"payload"`
}

// EventPayload is one sealed entry of the session event feed.
type EventPayload struct {
	Type     string   `json:"type"`
	Accounts []string `json:"accounts"`
	ChainID  uint64   `json:"chain_id"`
}

type relayRequest struct {
	ID      string `json:"id"`
	Payload string `json:"payload"`
}

// RequestPayload is a sealed JSON-RPC call relayed to the wallet.
type RequestPayload struct {
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
}

type relayTransaction struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value,omitempty"`
	Data  string `json:"data,omitempty"`
}

type relayStatusResponse struct {
	Status  string `json:"status"`
	Payload string `json:"payload,omitempty"`
}

// ResponsePayload is the wallet's sealed answer to a relayed request.
type ResponsePayload struct {
	Result string `json:"result"`
	Error  string `json:"error"`
}

type bridgeErrorResponse struct {
	Error string `json:"error"`
}

func (c Client) Pair(ctx context.Context) (domain.Pairing, error) {
	key := make([]byte, pairingKeyBytes)
	if _, err := rand.Read(key); err != nil {
		return domain.Pairing{}, fmt.Errorf("generate pairing key: %w", err)
	}

	pairing := domain.Pairing{
		Topic:    uuid.NewString(),
		Key:      hex.EncodeToString(key),
		Bridge:   c.BaseURL,
		ClientID: uuid.NewString(),
	}

	endpoint, err := buildBridgeURL(c.BaseURL, "sessions")
	if err != nil {
		return domain.Pairing{}, err
	}

	body := createSessionRequest{Topic: pairing.Topic, ClientID: pairing.ClientID, Name: clientName}
	if err := c.doJSON(ctx, http.MethodPost, endpoint, body, nil); err != nil {
		return domain.Pairing{}, fmt.Errorf("create bridge session: %w", err)
	}

	pairing.URI = PairingURI(pairing)
	c.logger().Debug("pairing created", "topic", pairing.Topic)
	return pairing, nil
}

// PairingURI renders wc:{topic}@1?bridge={url}&key={hex}.
func PairingURI(p domain.Pairing) string {
	values := url.Values{}
	values.Set("bridge", p.Bridge)
	values.Set("key", p.Key)
	return "wc:" + p.Topic + "@1?" + values.Encode()
}

// AwaitApproval polls the bridge until the wallet approves or rejects the
// pairing, or the approval timeout passes.
func (c Client) AwaitApproval(ctx context.Context, p domain.Pairing) (domain.RemoteSession, error) {
	if p.Topic == "" {
		return domain.RemoteSession{}, errors.New("pairing topic is required")
	}

	sealer, err := NewSealer(p.Key, p.Topic)
	if err != nil {
		return domain.RemoteSession{}, err
	}

	base := bridgeFor(p.Bridge, c.BaseURL)
	endpoint, err := buildBridgeURL(base, "sessions", p.Topic)
	if err != nil {
		return domain.RemoteSession{}, err
	}

	var status sessionStatusResponse
	err = c.pollUntil(ctx, c.approvalTimeout(), ErrApprovalTimeout, func(ctx context.Context) (bool, error) {
		status = sessionStatusResponse{}
		if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &status); err != nil {
			return false, fmt.Errorf("poll session approval: %w", err)
		}
		return status.Status != statusPending, nil
	})
	if err != nil {
		return domain.RemoteSession{}, err
	}

	switch status.Status {
	case statusApproved:
	case statusRejected:
		return domain.RemoteSession{}, fmt.Errorf("%w: pairing rejected by wallet", domain.ErrSessionError)
	default:
		return domain.RemoteSession{}, fmt.Errorf("%w: unexpected session status %q", domain.ErrSessionError, status.Status)
	}

	var approval ApprovalPayload
	if err := sealer.Open(PurposeApproval, status.Payload, &approval); err != nil {
		return domain.RemoteSession{}, fmt.Errorf("%w: %w", domain.ErrSessionError, err)
	}

	return domain.RemoteSession{
		Topic:     p.Topic,
		Key:       p.Key,
		Bridge:    base,
		ClientID:  p.ClientID,
		PeerName:  approval.PeerName,
		Accounts:  approval.Accounts,
		ChainID:   approval.ChainID,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Subscribe polls the session's event feed. Events are delivered in
// sequence order; the returned Unsubscribe only cancels.
func (c Client) Subscribe(ctx context.Context, session domain.RemoteSession, handler ports.SessionEventHandler) (ports.Unsubscribe, error) {
	if handler == nil {
		return nil, errors.New("session event handler is required")
	}

	sealer, err := NewSealer(session.Key, session.Topic)
	if err != nil {
		return nil, err
	}

	endpoint, err := buildBridgeURL(bridgeFor(session.Bridge, c.BaseURL), "sessions", session.Topic, "events")
	if err != nil {
		return nil, err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	go c.pollEvents(watchCtx, endpoint, sealer, handler)

	return func() { cancel() }, nil
}

// pollEvents delivers an event that fails authentication as an empty one, so
// the session manager reports it as malformed.
func (c Client) pollEvents(ctx context.Context, endpoint string, sealer Sealer, handler ports.SessionEventHandler) {
	var after uint64
	for {
		var feed eventsResponse
		err := c.doJSON(ctx, http.MethodGet, endpoint+"?after="+fmt.Sprint(after), nil, &feed)
		if err != nil && ctx.Err() == nil {
			c.logger().Debug("poll session events", "err", err)
		}

		for _, event := range feed.Events {
			if ctx.Err() != nil {
				return
			}
			if event.Seq <= after {
				continue
			}
			after = event.Seq

			var payload EventPayload
			if err := sealer.Open(PurposeEvent, event.Payload, &payload); err != nil {
				c.logger().Warn("drop unauthenticated session event", "seq", event.Seq, "err", err)
				handler(domain.SessionEvent{})
				continue
			}
			handler(domain.SessionEvent{
				Kind:     domain.SessionEventKind(payload.Type),
				Accounts: payload.Accounts,
				ChainID:  payload.ChainID,
			})
		}

		if !sleepContext(ctx, c.pollInterval()) {
			return
		}
	}
}

// SendTransaction relays eth_sendTransaction to the wallet and waits for
// the user to sign it.
func (c Client) SendTransaction(ctx context.Context, session domain.RemoteSession, req domain.TxRequest) (string, error) {
	sealer, err := NewSealer(session.Key, session.Topic)
	if err != nil {
		return "", err
	}

	base := bridgeFor(session.Bridge, c.BaseURL)
	endpoint, err := buildBridgeURL(base, "sessions", session.Topic, "requests")
	if err != nil {
		return "", err
	}

	tx := relayTransaction{From: string(req.From), To: string(req.To)}
	if req.Value != nil {
		tx.Value = hexutil.EncodeBig(req.Value)
	}
	if len(req.Data) > 0 {
		tx.Data = hexutil.Encode(req.Data)
	}

	payload, err := sealer.Seal(PurposeRequest, RequestPayload{Method: "eth_sendTransaction", Params: []interface{}{tx}})
	if err != nil {
		return "", err
	}
	request := relayRequest{ID: uuid.NewString(), Payload: payload}
	if err := c.doJSON(ctx, http.MethodPost, endpoint, request, nil); err != nil {
		return "", fmt.Errorf("relay eth_sendTransaction: %w", err)
	}

	statusURL, err := buildBridgeURL(base, "sessions", session.Topic, "requests", request.ID)
	if err != nil {
		return "", err
	}

	var status relayStatusResponse
	err = c.pollUntil(ctx, 0, nil, func(ctx context.Context) (bool, error) {
		status = relayStatusResponse{}
		if err := c.doJSON(ctx, http.MethodGet, statusURL, nil, &status); err != nil {
			return false, fmt.Errorf("poll relayed request: %w", err)
		}
		return status.Status != statusPending, nil
	})
	if err != nil {
		return "", err
	}

	var response ResponsePayload
	if status.Status == statusApproved || status.Status == statusRejected {
		if err := sealer.Open(PurposeResponse, status.Payload, &response); err != nil {
			return "", err
		}
	}

	switch status.Status {
	case statusApproved:
		if response.Result == "" {
			return "", errors.New("relayed request approved without a transaction hash")
		}
		return response.Result, nil
	case statusRejected:
		if response.Error != "" {
			return "", fmt.Errorf("%w: %s", ErrRequestRejected, response.Error)
		}
		return "", ErrRequestRejected
	default:
		return "", fmt.Errorf("relayed request: unexpected status %q", status.Status)
	}
}

// Kill ends the session on the bridge. A session the bridge no longer knows
// counts as killed.
func (c Client) Kill(ctx context.Context, session domain.RemoteSession) error {
	endpoint, err := buildBridgeURL(bridgeFor(session.Bridge, c.BaseURL), "sessions", session.Topic)
	if err != nil {
		return err
	}

	err = c.doJSON(ctx, http.MethodDelete, endpoint, nil, nil)
	var statusErr *statusError
	if errors.As(err, &statusErr) && statusErr.code == http.StatusNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("kill bridge session: %w", err)
	}
	return nil
}

// pollUntil calls check until it reports done. A zero timeout waits for
// ctx alone.
func (c Client) pollUntil(ctx context.Context, timeout time.Duration, timeoutErr error, check func(context.Context) (bool, error)) error {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	for {
		if !deadline.IsZero() && time.Now().After(deadline) {
			return timeoutErr
		}

		done, err := check(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		if !sleepContext(ctx, c.pollInterval()) {
			return ctx.Err()
		}
	}
}

type statusError struct {
	code    int
	message string
}

func (e *statusError) Error() string {
	if e.message != "" {
		return fmt.Sprintf("status %d: %s", e.code, e.message)
	}
	return fmt.Sprintf("status %d", e.code)
}

func (c Client) doJSON(ctx context.Context, method string, endpoint string, body interface{}, out interface{}) error {
	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(encoded)
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, method, endpoint, payload)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var bridgeErr bridgeErrorResponse
		_ = json.NewDecoder(io.LimitReader(resp.Body, maxBridgeResponseBytes)).Decode(&bridgeErr)
		return &statusError{code: resp.StatusCode, message: bridgeErr.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBridgeResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	requestTimeout := c.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}

	return context.WithTimeout(ctx, requestTimeout)
}

func (c Client) pollInterval() time.Duration {
	if c.PollInterval > 0 {
		return c.PollInterval
	}
	return 2 * time.Second
}

func (c Client) approvalTimeout() time.Duration {
	if c.ApprovalTimeout > 0 {
		return c.ApprovalTimeout
	}
	return 5 * time.Minute
}

func (c Client) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.New(io.Discard)
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		if !timer.Stop() {
			<-timer.C
		}
		return false
	case <-timer.C:
		return true
	}
}

func bridgeFor(sessionBridge, fallback string) string {
	if strings.TrimSpace(sessionBridge) != "" {
		return sessionBridge
	}
	return fallback
}

func buildBridgeURL(baseURL string, segments ...string) (string, error) {
	if baseURL == "" {
		return "", errors.New("bridge url is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse bridge url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("bridge url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("bridge url host is required")
	}

	for _, segment := range segments {
		if segment == "" {
			return "", errors.New("bridge path segment is required")
		}
	}

	return parsed.JoinPath(segments...).String(), nil
}
