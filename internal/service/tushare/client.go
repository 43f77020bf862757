package tushare

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FundLens/internal/domain/models"
	domrepo "FundLens/internal/domain/repository"
	xhttp "FundLens/pkg/http"
	applogger "FundLens/pkg/logger"
	"FundLens/pkg/util"
)

// Vendor API names.
const (
	APIFundNAV     = "fund_nav"
	APIFundDaily   = "fund_daily"
	APIIndexDaily  = "index_daily"
	APIFundBasic   = "fund_basic"
	APIFundManager = "fund_manager"
	APIFundShare   = "fund_share"
	APIFundDiv     = "fund_div"
)

// APIError is a non-zero response code from the vendor, e.g. an invalid token or exhausted quota.
type APIError struct {
	API  string
	Code int
	Msg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tushare %s: code %d: %s", e.API, e.Code, e.Msg)
}

type request struct {
	APIName string         `json:"api_name"`
	Token   string         `json:"token"`
	Params  map[string]any `json:"params"`
	Fields  string         `json:"fields"`
}

type response struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data *struct {
		Fields []string `json:"fields"`
		Items  [][]any  `json:"items"`
	} `json:"data"`
}

// Option configures Client.
type Option func(*Client)

// Client queries the Tushare Pro HTTP API. All calls share one outbound rate limiter.
type Client struct {
	baseURL string
	token   string
	retries int
	backoff time.Duration
	http    *xhttp.Client
	metrics domrepo.Metrics
	l       *applogger.Logger
}

func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		token:   token,
		retries: 3,
		backoff: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = xhttp.NewClient(xhttp.WithTimeout(15 * time.Second))
	}
	return c
}

// WithHTTPClient sets the transport client, typically carrying timeout and rate limit.
func WithHTTPClient(hc *xhttp.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRetries sets attempts per call and the linear backoff step.
func WithRetries(attempts int, backoff time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.retries = attempts
		}
		if backoff > 0 {
			c.backoff = backoff
		}
	}
}

func WithMetrics(m domrepo.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithLogger(l *applogger.Logger) Option {
	return func(c *Client) { c.l = l }
}

// Query calls one vendor API and returns its rows keyed by field name.
func (c *Client) Query(ctx context.Context, api string, params map[string]any, fields string) ([]models.RawRecord, error) {
	if c.token == "" {
		return nil, fmt.Errorf("tushare %s: token not configured", api)
	}
	if params == nil {
		params = map[string]any{}
	}
	start := time.Now()
	var resp response
	err := c.postWithRetry(ctx, request{APIName: api, Token: c.token, Params: params, Fields: fields}, &resp)
	if err == nil && resp.Code != 0 {
		err = &APIError{API: api, Code: resp.Code, Msg: resp.Msg}
	}
	c.record(api, err, time.Since(start))
	if err != nil {
		c.l.Warn("tushare query failed", applogger.String("api", api), applogger.Error(err))
		return nil, err
	}
	if resp.Data == nil {
		return nil, nil
	}
	rows := make([]models.RawRecord, 0, len(resp.Data.Items))
	for _, item := range resp.Data.Items {
		rec := make(models.RawRecord, len(resp.Data.Fields))
		for i, f := range resp.Data.Fields {
			if i < len(item) {
				rec[f] = item[i]
			}
		}
		rows = append(rows, rec)
	}
	c.l.Debug("tushare query", applogger.String("api", api), applogger.Int("rows", len(rows)))
	return rows, nil
}

func (c *Client) post(ctx context.Context, payload request, dest *response) error {
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     c.baseURL,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    payload,
	}, dest)
	if err != nil {
		return fmt.Errorf("post %s: %w", payload.APIName, err)
	}
	return nil
}

// postWithRetry retries transport failures and retryable statuses with linear backoff.
func (c *Client) postWithRetry(ctx context.Context, payload request, dest *response) error {
	var err error
	for i := 1; i <= c.retries; i++ {
		*dest = response{}
		err = c.post(ctx, payload, dest)
		if err == nil || !retryable(err) || i == c.retries {
			return err
		}
		select {
		case <-time.After(time.Duration(i) * c.backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return true
}

func (c *Client) record(api string, err error, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.metrics.RecordFetch(api, outcome)
	c.metrics.RecordLatency("tushare_"+api, elapsed.Seconds())
}

func rangeParams(code string, start, end time.Time) map[string]any {
	p := map[string]any{"ts_code": code}
	if s := util.FormatCompact(start); s != "" {
		p["start_date"] = s
	}
	if e := util.FormatCompact(end); e != "" {
		p["end_date"] = e
	}
	return p
}

// FundNAV returns published net asset values of an open-end fund.
func (c *Client) FundNAV(ctx context.Context, code string, start, end time.Time) ([]models.RawRecord, error) {
	return c.Query(ctx, APIFundNAV, rangeParams(code, start, end), "")
}

// FundDaily returns exchange-traded fund bars (open/high/low/close/vol).
func (c *Client) FundDaily(ctx context.Context, code string, start, end time.Time) ([]models.RawRecord, error) {
	return c.Query(ctx, APIFundDaily, rangeParams(code, start, end), "")
}

// IndexDaily returns index bars.
func (c *Client) IndexDaily(ctx context.Context, code string, start, end time.Time) ([]models.RawRecord, error) {
	return c.Query(ctx, APIIndexDaily, rangeParams(code, start, end), "")
}

// FundBasic lists funds of a market: "E" exchange, "O" over the counter.
func (c *Client) FundBasic(ctx context.Context, market string) ([]models.RawRecord, error) {
	return c.Query(ctx, APIFundBasic, map[string]any{"market": market}, "")
}

func (c *Client) FundManager(ctx context.Context, code string) ([]models.RawRecord, error) {
	return c.Query(ctx, APIFundManager, map[string]any{"ts_code": code}, "")
}

func (c *Client) FundShare(ctx context.Context, code string) ([]models.RawRecord, error) {
	return c.Query(ctx, APIFundShare, map[string]any{"ts_code": code}, "")
}

func (c *Client) FundDiv(ctx context.Context, code string) ([]models.RawRecord, error) {
	return c.Query(ctx, APIFundDiv, map[string]any{"ts_code": code}, "")
}
