package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// YooKassaAPIURL адрес API ЮKassa
const YooKassaAPIURL = "https://api.yookassa.ru/v3"

// Статусы платежа ЮKassa
const (
	StatusPending   = "pending"
	StatusSucceeded = "succeeded"
	StatusCanceled  = "canceled"
)

// Amount сумма платежа
type Amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// Float сумма числом
func (a Amount) Float() float64 {
	v, _ := strconv.ParseFloat(a.Value, 64)
	return v
}

// Confirmation способ подтверждения
type Confirmation struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

type receiptItem struct {
	Description    string `json:"description"`
	Quantity       string `json:"quantity"`
	Amount         Amount `json:"amount"`
	VatCode        int    `json:"vat_code"`
	PaymentMode    string `json:"payment_mode"`
	PaymentSubject string `json:"payment_subject"`
}

type receipt struct {
	Customer struct {
		Email string `json:"email"`
	} `json:"customer"`
	Items []receiptItem `json:"items"`
}

type createRequest struct {
	Amount       Amount            `json:"amount"`
	Confirmation Confirmation      `json:"confirmation"`
	Capture      bool              `json:"capture"`
	Description  string            `json:"description"`
	Metadata     map[string]string `json:"metadata"`
	Receipt      *receipt          `json:"receipt,omitempty"`
}

// YooPayment платёж ЮKassa
type YooPayment struct {
	ID           string            `json:"id"`
	Status       string            `json:"status"`
	Paid         bool              `json:"paid"`
	Amount       Amount            `json:"amount"`
	Confirmation *Confirmation     `json:"confirmation,omitempty"`
	Description  string            `json:"description,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Succeeded платёж прошёл и оплачен
func (p *YooPayment) Succeeded() bool {
	return p.Status == StatusSucceeded && p.Paid
}

// UserID из metadata
func (p *YooPayment) UserID() int64 {
	id, _ := strconv.ParseInt(p.Metadata["user_id"], 10, 64)
	return id
}

// ConfirmationURL ссылка на оплату
func (p *YooPayment) ConfirmationURL() string {
	if p.Confirmation == nil {
		return ""
	}
	return p.Confirmation.ConfirmationURL
}

// Notification уведомление ЮKassa о событии платежа
type Notification struct {
	Type   string     `json:"type"`
	Event  string     `json:"event"`
	Object YooPayment `json:"object"`
}

// ParseNotification читает тело уведомления
func ParseNotification(r io.Reader) (*Notification, error) {
	var n Notification
	if err := json.NewDecoder(r).Decode(&n); err != nil {
		return nil, fmt.Errorf("ошибка парсинга уведомления: %w", err)
	}
	if n.Object.ID == "" {
		return nil, fmt.Errorf("уведомление без id платежа")
	}
	return &n, nil
}

// YooKassa клиент REST API ЮKassa
type YooKassa struct {
	shopID     string
	secretKey  string
	returnURL  string
	baseURL    string
	httpClient *http.Client
}

// NewYooKassa создаёт клиент. baseURL пустой - боевой адрес.
func NewYooKassa(shopID, secretKey, returnURL, baseURL string) *YooKassa {
	if baseURL == "" {
		baseURL = YooKassaAPIURL
	}
	return &YooKassa{
		shopID:    shopID,
		secretKey: secretKey,
		returnURL: returnURL,
		baseURL:   baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreatePayment создаёт платёж с чеком и ссылкой на оплату
func (y *YooKassa) CreatePayment(ctx context.Context, userID int64, plan Plan, description string) (*YooPayment, error) {
	amount := Amount{Value: fmt.Sprintf("%.2f", plan.RUB), Currency: CurrencyRUB}

	rc := &receipt{}
	rc.Customer.Email = fmt.Sprintf("user%d@telegram.user", userID)
	rc.Items = []receiptItem{{
		Description:    description,
		Quantity:       "1.00",
		Amount:         amount,
		VatCode:        1,
		PaymentMode:    "full_prepayment",
		PaymentSubject: "service",
	}}

	req := createRequest{
		Amount:       amount,
		Confirmation: Confirmation{Type: "redirect", ReturnURL: y.returnURL},
		Capture:      true,
		Description:  description,
		Metadata: map[string]string{
			"user_id":          strconv.FormatInt(userID, 10),
			"subscription_key": plan.Key,
		},
		Receipt: rc,
	}

	var p YooPayment
	if err := y.do(ctx, http.MethodPost, "/payments", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPayment возвращает текущее состояние платежа
func (y *YooKassa) GetPayment(ctx context.Context, id string) (*YooPayment, error) {
	var p YooPayment
	if err := y.do(ctx, http.MethodGet, "/payments/"+id, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (y *YooKassa) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("ошибка сериализации: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, y.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.SetBasicAuth(y.shopID, y.secretKey)
	req.Header.Set("Content-Type", "application/json")
	if method == http.MethodPost {
		req.Header.Set("Idempotence-Key", uuid.NewString())
	}

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка запроса к ЮKassa: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа: %w", err)
	}
	if resp.StatusCode >= 300 {
		var apiErr struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		}
		json.Unmarshal(data, &apiErr)
		return fmt.Errorf("ЮKassa вернула %d: %s %s", resp.StatusCode, apiErr.Code, apiErr.Description)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("ошибка парсинга ответа: %w", err)
	}
	return nil
}
