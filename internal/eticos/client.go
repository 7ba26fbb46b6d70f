package eticos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/entregas-next/internal/config"
	"github.com/entregas-next/internal/logger"
)

// Client cliente HTTP del backend Eticos
// Todas las operaciones salvo Login exigen el token bearer del backend
type Client struct {
	baseURL    string
	authURL    string
	httpClient *http.Client
}

// NewClient crea el cliente del backend
func NewClient(cfg config.EticosConfig) *Client {
	timeout := cfg.TimeoutMS
	if timeout < 500 || timeout > 60000 {
		timeout = 10000
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		authURL: strings.TrimRight(strings.TrimSpace(cfg.AuthURL), "/"),
		httpClient: &http.Client{
			Timeout: time.Duration(timeout) * time.Millisecond,
		},
	}
}

type loginRequest struct {
	IDUsers  string `json:"idUsers"`
	Password string `json:"password"`
}

// Login autentica al usuario contra el backend
func (c *Client) Login(ctx context.Context, idUsers, password string) (*AuthData, error) {
	return call[AuthData](c, ctx, http.MethodPost, c.authURL+"/login", "", loginRequest{
		IDUsers:  idUsers,
		Password: password,
	})
}

// Contract obtiene el contrato vigente del usuario
func (c *Client) Contract(ctx context.Context, token, nit string, userID int) (*ContractData, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	query := url.Values{}
	query.Set("nit", nit)
	query.Set("userId", strconv.Itoa(userID))
	endpoint := c.baseURL + "/contract?" + query.Encode()
	return call[ContractData](c, ctx, http.MethodGet, endpoint, token, nil)
}

// FormulaPatient consulta los datos del paciente por radicado y farmacia
func (c *Client) FormulaPatient(ctx context.Context, token, registeredTypeNumber, dispensaryCode string) (*FormulaPatient, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	query := url.Values{}
	query.Set("registeredTypeNumber", registeredTypeNumber)
	query.Set("dispensaryCode", dispensaryCode)
	endpoint := c.baseURL + "/formula?" + query.Encode()
	return call[FormulaPatient](c, ctx, http.MethodGet, endpoint, token, nil)
}

type saveEntregaRequest struct {
	Entrega EntregaRequest `json:"entrega"`
}

// SaveEntrega registra una gestión de entrega
func (c *Client) SaveEntrega(ctx context.Context, token string, entrega EntregaRequest) (*SavedEntrega, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	endpoint := c.baseURL + "/management-entregas"
	return call[SavedEntrega](c, ctx, http.MethodPost, endpoint, token, saveEntregaRequest{Entrega: entrega})
}

// ListEntregas lista las gestiones registradas de una farmacia
func (c *Client) ListEntregas(ctx context.Context, token, dispensaryCode string) ([]SavedEntrega, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	query := url.Values{}
	query.Set("dispensaryCode", dispensaryCode)
	endpoint := c.baseURL + "/management-entregas?" + query.Encode()
	list, err := call[[]SavedEntrega](c, ctx, http.MethodGet, endpoint, token, nil)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, nil
	}
	return *list, nil
}

// UpdatePatient actualiza parcialmente los datos del paciente
func (c *Client) UpdatePatient(ctx context.Context, token string, patch PatientPatch) error {
	if token == "" {
		return ErrMissingToken
	}
	if strings.TrimSpace(patch.Identification) == "" {
		return fmt.Errorf("%w: patient identification required", ErrInvalidResponse)
	}
	endpoint := c.baseURL + "/patient/" + url.PathEscape(patch.Identification)
	_, err := call[json.RawMessage](c, ctx, http.MethodPatch, endpoint, token, patch)
	return err
}

// call ejecuta una petición y decodifica el sobre {success,data,error}
func call[T any](c *Client, ctx context.Context, method, endpoint, token string, body any) (*T, error) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var envelope Envelope[T]
	if decodeErr := json.NewDecoder(resp.Body).Decode(&envelope); decodeErr != nil {
		logger.Warnw("eticos_response_decode_failed",
			"method", method,
			"status", resp.StatusCode,
			"error", decodeErr,
		)
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, decodeErr)
	}

	if !envelope.Success {
		if envelope.Error != nil && strings.TrimSpace(*envelope.Error) != "" {
			return nil, &BackendError{Message: strings.TrimSpace(*envelope.Error)}
		}
		return nil, ErrNotFound
	}
	if envelope.Data == nil {
		return nil, ErrNotFound
	}
	return envelope.Data, nil
}
