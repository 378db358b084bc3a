package depot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tally/internal/inventory"
	"tally/internal/services"
)

const defaultHTTPTimeout = 15 * time.Second

// Client talks to the remote inventory service. All mutation endpoints are
// authoritative on the depot side; this client never writes local state.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option customizes the depot client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default request timeout. Ignored when a custom
// HTTP client is installed.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New constructs a depot client for the given base URL and bearer token.
func New(baseURL, token string, opts ...Option) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:      strings.TrimSpace(token),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// ItemFilter narrows an item listing. Zero-valued fields are omitted.
type ItemFilter struct {
	ID               string
	ShortCode        string
	WarehouseID      int64
	ItemDefinitionID int64
	Status           inventory.Status
}

func (f ItemFilter) query() url.Values {
	values := url.Values{}
	if strings.TrimSpace(f.ID) != "" {
		values.Set("id", strings.TrimSpace(f.ID))
	}
	if strings.TrimSpace(f.ShortCode) != "" {
		values.Set("shortId", strings.TrimSpace(f.ShortCode))
	}
	if f.WarehouseID > 0 {
		values.Set("warehouseId", strconv.FormatInt(f.WarehouseID, 10))
	}
	if f.ItemDefinitionID > 0 {
		values.Set("itemDefinitionId", strconv.FormatInt(f.ItemDefinitionID, 10))
	}
	if f.Status != "" {
		values.Set("status", string(f.Status))
	}
	return values
}

// Items lists items matching the filter.
func (c *Client) Items(ctx context.Context, filter ItemFilter) ([]inventory.Item, error) {
	var items []inventory.Item
	if err := c.getJSON(ctx, "/items", filter.query(), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ItemsByID looks an item up by its full identifier. Satisfies
// inventory.Directory.
func (c *Client) ItemsByID(ctx context.Context, id string) ([]inventory.Item, error) {
	return c.Items(ctx, ItemFilter{ID: id})
}

// ItemsByShortCode looks items up by short-code prefix. Satisfies
// inventory.Directory.
func (c *Client) ItemsByShortCode(ctx context.Context, code string) ([]inventory.Item, error) {
	return c.Items(ctx, ItemFilter{ShortCode: code})
}

// Upload carries an attachment for a multipart request.
type Upload struct {
	Filename string
	Content  []byte
}

// CreateItemRequest describes a new item.
type CreateItemRequest struct {
	ItemDefinitionID int64
	WarehouseID      int64
	ShortID          string
	Remarks          string
	Photo            *Upload
}

// CreateItem registers a new item with the depot.
func (c *Client) CreateItem(ctx context.Context, req CreateItemRequest) (inventory.Item, error) {
	var empty inventory.Item
	if req.ItemDefinitionID <= 0 {
		return empty, services.Wrap(services.ErrValidation, "depot", "create item", "item definition id required", nil)
	}
	if req.WarehouseID <= 0 {
		return empty, services.Wrap(services.ErrValidation, "depot", "create item", "warehouse id required", nil)
	}
	fields := map[string]string{
		"itemDefinitionId": strconv.FormatInt(req.ItemDefinitionID, 10),
		"warehouseId":      strconv.FormatInt(req.WarehouseID, 10),
	}
	if strings.TrimSpace(req.ShortID) != "" {
		fields["shortId"] = strings.TrimSpace(req.ShortID)
	}
	if req.Remarks != "" {
		fields["remarks"] = req.Remarks
	}
	var item inventory.Item
	if err := c.multipart(ctx, http.MethodPost, "/items/create", fields, req.Photo, &item); err != nil {
		return empty, err
	}
	return item, nil
}

// UpdateItemRequest carries a remarks/photo edit. Remarks is always sent,
// matching the depot's replace semantics.
type UpdateItemRequest struct {
	Remarks     string
	Photo       *Upload
	DeletePhoto bool
}

// UpdateItem edits an item's remarks and photo. Edits are not lifecycle
// transitions; callers pre-validate with inventory.ValidateEdit.
func (c *Client) UpdateItem(ctx context.Context, id string, req UpdateItemRequest) (inventory.Item, error) {
	var empty inventory.Item
	if strings.TrimSpace(id) == "" {
		return empty, services.Wrap(services.ErrValidation, "depot", "update item", "item id required", nil)
	}
	fields := map[string]string{"remarks": req.Remarks}
	if req.DeletePhoto {
		fields["deletePhoto"] = "true"
	}
	var item inventory.Item
	if err := c.multipart(ctx, http.MethodPut, "/items/"+url.PathEscape(id), fields, req.Photo, &item); err != nil {
		return empty, err
	}
	return item, nil
}

// Transfer moves an item to another warehouse without touching its status.
func (c *Client) Transfer(ctx context.Context, id string, warehouseID int64, remarks string) (inventory.Item, error) {
	var empty inventory.Item
	if strings.TrimSpace(id) == "" {
		return empty, services.Wrap(services.ErrValidation, "depot", "transfer", "item id required", nil)
	}
	if warehouseID <= 0 {
		return empty, services.Wrap(services.ErrValidation, "depot", "transfer", "warehouse id required", nil)
	}
	payload := struct {
		NewWarehouseID int64  `json:"newWarehouseId"`
		Remarks        string `json:"remarks,omitempty"`
	}{NewWarehouseID: warehouseID, Remarks: remarks}
	var item inventory.Item
	if err := c.putJSON(ctx, "/items/"+url.PathEscape(id)+"/transfer", payload, &item); err != nil {
		return empty, err
	}
	return item, nil
}

// ApplyTransition invokes a per-item lifecycle endpoint. report-missing has
// no per-item endpoint on the depot and is routed through UpdateStatusBatch.
func (c *Client) ApplyTransition(ctx context.Context, id string, op inventory.Operation, destination string) (inventory.Item, error) {
	var empty inventory.Item
	if strings.TrimSpace(id) == "" {
		return empty, services.Wrap(services.ErrValidation, "depot", "transition", "item id required", nil)
	}
	switch op {
	case inventory.OpOutbound, inventory.OpReturn, inventory.OpCheck, inventory.OpDispose:
	default:
		return empty, services.Wrap(services.ErrValidation, "depot", "transition", "no per-item endpoint for "+string(op), nil)
	}
	payload := struct {
		Destination string `json:"destination,omitempty"`
	}{Destination: strings.TrimSpace(destination)}
	var item inventory.Item
	if err := c.putJSON(ctx, "/items/"+url.PathEscape(id)+"/"+string(op), payload, &item); err != nil {
		return empty, err
	}
	return item, nil
}

// UpdateStatusBatch writes one status across many items in a single call.
// The depot acknowledges without returning item bodies.
func (c *Client) UpdateStatusBatch(ctx context.Context, ids []string, status inventory.Status) error {
	if len(ids) == 0 {
		return nil
	}
	payload := struct {
		ItemIDs []string         `json:"itemIds"`
		Status  inventory.Status `json:"status"`
	}{ItemIDs: ids, Status: status}
	return c.postJSON(ctx, "/items/update-status/batch", payload, nil)
}

// Warehouses lists the depot's warehouses.
func (c *Client) Warehouses(ctx context.Context) ([]Warehouse, error) {
	var warehouses []Warehouse
	if err := c.getJSON(ctx, "/warehouses", nil, &warehouses); err != nil {
		return nil, err
	}
	return warehouses, nil
}

// Categories lists item categories.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.getJSON(ctx, "/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// ItemDefinitions lists item definitions.
func (c *Client) ItemDefinitions(ctx context.Context) ([]ItemDefinition, error) {
	var definitions []ItemDefinition
	if err := c.getJSON(ctx, "/itemDefinitions", nil, &definitions); err != nil {
		return nil, err
	}
	return definitions, nil
}

// AuditLogs lists audit records, optionally narrowed to one item.
func (c *Client) AuditLogs(ctx context.Context, itemID string) ([]AuditLog, error) {
	values := url.Values{}
	if strings.TrimSpace(itemID) != "" {
		values.Set("itemId", strings.TrimSpace(itemID))
	}
	var logs []AuditLog
	if err := c.getJSON(ctx, "/auditLogs", values, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (c *Client) getJSON(ctx context.Context, path string, values url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(values) > 0 {
		endpoint += "?" + values.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return services.Wrap(services.ErrTransient, "depot", "request", "build request", err)
	}
	return c.do(req, out)
}

func (c *Client) putJSON(ctx context.Context, path string, payload, out any) error {
	return c.sendJSON(ctx, http.MethodPut, path, payload, out)
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	return c.sendJSON(ctx, http.MethodPost, path, payload, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload, out any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return services.Wrap(services.ErrValidation, "depot", "request", "encode payload", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return services.Wrap(services.ErrTransient, "depot", "request", "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) multipart(ctx context.Context, method, path string, fields map[string]string, photo *Upload, out any) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return services.Wrap(services.ErrTransient, "depot", "request", "encode form", err)
		}
	}
	if photo != nil {
		filename := photo.Filename
		if filename == "" {
			filename = "photo"
		}
		part, err := writer.CreateFormFile("photo", filename)
		if err != nil {
			return services.Wrap(services.ErrTransient, "depot", "request", "encode photo", err)
		}
		if _, err := part.Write(photo.Content); err != nil {
			return services.Wrap(services.ErrTransient, "depot", "request", "encode photo", err)
		}
	}
	if err := writer.Close(); err != nil {
		return services.Wrap(services.ErrTransient, "depot", "request", "encode form", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &body)
	if err != nil {
		return services.Wrap(services.ErrTransient, "depot", "request", "build request", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "depot", "request", "request failed", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return services.Wrap(services.ErrTransient, "depot", "response", "read body", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return statusError(resp.StatusCode, body)
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return services.Wrap(services.ErrTransient, "depot", "response", "decode body", err)
	}
	return nil
}

func statusError(status int, body []byte) error {
	detail := strings.TrimSpace(string(body))
	if len(detail) > 256 {
		detail = detail[:256]
	}
	message := fmt.Sprintf("http %d", status)
	if detail != "" {
		message += ": " + detail
	}
	switch {
	case status == http.StatusNotFound:
		return services.Wrap(services.ErrNotFound, "depot", "response", message, nil)
	case status == http.StatusBadRequest, status == http.StatusConflict, status == http.StatusUnprocessableEntity:
		return services.Wrap(services.ErrValidation, "depot", "response", message, nil)
	case status >= http.StatusInternalServerError, status == http.StatusTooManyRequests:
		return services.Wrap(services.ErrTransient, "depot", "response", message, nil)
	default:
		return services.Wrap(services.ErrTransient, "depot", "response", message, nil)
	}
}
