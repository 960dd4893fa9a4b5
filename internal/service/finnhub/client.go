package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"WaveFuse/internal/domain/models"
	drepo "WaveFuse/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Client is the Finnhub WebSocket MarketStream.
type Client struct {
	apiKey         string
	websocketURL   string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn      *websocket.Conn
	connected bool
}

func New(apiKey, websocketURL string, symbols []string, reconnectDelay, pingInterval time.Duration) drepo.MarketStream {
	return &Client{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		symbols:        symbols,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

func (c *Client) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", c.websocketURL, c.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("finnhub connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	log.Printf("finnhub: connected")
	return nil
}

// Subscribe requests trade events for every configured symbol.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("finnhub not connected")
	}
	for _, s := range c.symbols {
		if err := c.conn.WriteJSON(map[string]string{"type": "subscribe", "symbol": s}); err != nil {
			return fmt.Errorf("subscribe %s: %w", s, err)
		}
		log.Printf("finnhub: subscribed %s", s)
	}
	return nil
}

// wire frames: {"type":"trade","data":[{"s":sym,"p":price,"v":vol,"t":ms}]}
type fhTick struct {
	S string  `json:"s"`
	P float64 `json:"p"`
	V float64 `json:"v"`
	T int64   `json:"t"`
}

type fhMessage struct {
	Type string   `json:"type"`
	Data []fhTick `json:"data"`
}

// Read launches the ping and read loops and streams decoded ticks. The tick
// channel is buffered; ticks are dropped rather than blocking the read loop
// when the consumer falls behind.
func (c *Client) Read(ctx context.Context) (<-chan *models.Tick, <-chan error) {
	ticks := make(chan *models.Tick, 1024)
	errs := make(chan error, 1)

	go c.pingLoop(ctx)
	go func() {
		defer close(ticks)
		defer close(errs)
		c.readLoop(ctx, ticks, errs)
	}()

	return ticks, errs
}

func (c *Client) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.conn != nil {
				_ = c.conn.WriteMessage(websocket.PingMessage, nil)
			}
		}
	}
}

func (c *Client) readLoop(ctx context.Context, ticks chan<- *models.Tick, errs chan<- error) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if c.conn == nil {
			errs <- fmt.Errorf("finnhub conn nil")
			return
		}
		_, b, err := c.conn.ReadMessage()
		if err != nil {
			errs <- fmt.Errorf("finnhub read: %w", err)
			return
		}

		var m fhMessage
		if err := json.Unmarshal(b, &m); err != nil {
			continue // non-JSON control frame
		}
		if m.Type != "trade" {
			continue
		}
		for _, d := range m.Data {
			tick := &models.Tick{Symbol: d.S, Timestamp: d.T / 1000, Price: d.P, Volume: d.V}
			select {
			case ticks <- tick:
			default:
				// drop on backpressure
			}
		}
	}
}

// Reconnect tears down the connection, waits the configured delay, then
// dials and resubscribes.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Client) IsConnected() bool { return c.connected }
