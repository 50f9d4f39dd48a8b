package hephaistos

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultEndpoint is the public Hephaistos GraphQL endpoint.
const DefaultEndpoint = "https://hephaistos.online/query"

// ErrCharacterNotFound is returned when the endpoint has no accessible character for an id.
var ErrCharacterNotFound = errors.New("hephaistos: character not found")

// QueryJSON requests the builder's serialized document.
const QueryJSON = `query($characterId:String!) {
  characters(readOnlyPermalinkId: [$characterId]) {
    readOnlyPermalinkId
    name
    json
    updated
  }
}`

// QueryInline requests the inline field set the rules engine reads.
var QueryInline = `query($characterId:String!) {
  characters(readOnlyPermalinkId: [$characterId]) {
    readOnlyPermalinkId
    name
    inventory {
      __typename
      ...on CharacterArmor {
        maxDexBonusOverride
        kacBonusOverride
        eacBonusOverride
        isEquipped
        armor {
          __typename
          ...on NormalArmor { type maxDexBonus kacBonus eacBonus }
          ...on PoweredArmor { strength maxDexBonus kacBonus eacBonus }
        }
      }
      ...on CharacterShield {
        maxDexBonusOverride
        wieldAcBonusOverride
        isEquipped
        shield { maxDexBonus wieldAcBonus }
      }
      ...on CharacterAugmentation {
        augmentation { type options { id effect } }
        selectedOptions { key value }
        isEquipped
      }
    }
    theme {
      selectedBenefitOptions { key value }
      theme { benefits { effect options { id effect } } }
    }
    race {
      race { abilityAdjustment { id effect } hitPoints }
      selectedAdjustment
    }
    vitals {
      temporary
      stamina { damage }
      health { damage }
    }
    abilityScores {
      method
      increases
      str { customBonus { value active } damage pointBuy override }
      dex { customBonus { value active } damage pointBuy override }
      con { customBonus { value active } damage pointBuy override }
      int { customBonus { value active } damage pointBuy override }
      wis { customBonus { value active } damage pointBuy override }
      cha { customBonus { value active } damage pointBuy override }
    }
    classes {
      levels
      class { baseStaminaPoints hitPoints armorProficiencyDescription armorProficiency }
    }
    feats { feat { benefit } }
    conditions {
` + conditionFields + `    }
  }
}`

var conditionNames = []string{
	"unconscious", "stunned", "staggered", "stable", "sickened", "shaken", "prone", "pinned",
	"paralyzed", "panicked", "overburdened", "offTarget", "offKilter", "nauseated", "helpless",
	"grappled", "frightened", "flatFooted", "fatigued", "fascinated", "exhausted", "entangled",
	"encumbered", "dying", "deafened", "dead", "dazzled", "dazed", "cowering", "confused",
	"burning", "broken", "blinded", "bleeding", "asleep",
}

var conditionFields = func() string {
	var b strings.Builder
	for _, n := range conditionNames {
		fmt.Fprintf(&b, "      %s { override }\n", n)
	}
	return b.String()
}()

// DocumentCache stores raw character documents between fetches.
type DocumentCache interface {
	// Get returns the cached document and whether it was present.
	Get(ctx context.Context, id string) ([]byte, bool, error)
	Put(ctx context.Context, id string, doc []byte) error
	Invalidate(ctx context.Context, id string) error
}

// ClientConfig configures a Client.
type ClientConfig struct {
	Endpoint string
	// Query is QueryJSON or QueryInline.
	Query   string
	Timeout time.Duration
	Cache   DocumentCache
	Logger  *zap.Logger
}

// Client fetches raw character documents from the Hephaistos GraphQL endpoint.
type Client struct {
	endpoint string
	query    string
	http     *http.Client
	cache    DocumentCache
	logger   *zap.Logger
}

// NewClient creates a Client. Empty Endpoint and Query default to DefaultEndpoint
// and QueryJSON.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Query == "" {
		cfg.Query = QueryJSON
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Client{
		endpoint: cfg.Endpoint,
		query:    cfg.Query,
		http:     &http.Client{Timeout: cfg.Timeout},
		cache:    cfg.Cache,
		logger:   cfg.Logger,
	}
}

type graphQLRequest struct {
	Query     string            `json:"query"`
	Variables map[string]string `json:"variables"`
}

type graphQLResponse struct {
	Data struct {
		Characters []json.RawMessage `json:"characters"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Fetch returns the raw document of the character with id. A cache hit skips the
// network; cache failures are logged and otherwise ignored. Only documents that
// decode are cached, and a cached document that no longer decodes is dropped and
// fetched again.
//
// Precondition: id must be non-empty.
// Postcondition: returns a non-empty document or a non-nil error.
func (c *Client) Fetch(ctx context.Context, id string) ([]byte, error) {
	if c.cache != nil {
		if doc, ok := c.cached(ctx, id); ok {
			return doc, nil
		}
	}

	doc, err := c.fetchRemote(ctx, id)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if _, err := Decode(doc); err != nil {
			c.logger.Debug("not caching undecodable document", zap.String("character", id), zap.Error(err))
			return doc, nil
		}
		if err := c.cache.Put(ctx, id, doc); err != nil {
			c.logger.Warn("document cache write failed", zap.String("character", id), zap.Error(err))
		}
	}
	return doc, nil
}

func (c *Client) cached(ctx context.Context, id string) ([]byte, bool) {
	doc, ok, err := c.cache.Get(ctx, id)
	switch {
	case err != nil:
		c.logger.Warn("document cache read failed", zap.String("character", id), zap.Error(err))
		return nil, false
	case !ok:
		return nil, false
	}
	if _, err := Decode(doc); err != nil {
		c.logger.Info("dropping undecodable cached document", zap.String("character", id), zap.Error(err))
		if err := c.cache.Invalidate(ctx, id); err != nil {
			c.logger.Warn("document cache invalidate failed", zap.String("character", id), zap.Error(err))
		}
		return nil, false
	}
	c.logger.Debug("document cache hit", zap.String("character", id))
	return doc, true
}

func (c *Client) fetchRemote(ctx context.Context, id string) ([]byte, error) {
	body, err := json.Marshal(graphQLRequest{
		Query:     c.query,
		Variables: map[string]string{"characterId": id},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request for %q: %w", id, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request for %q: %w", id, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching character %q: %w", id, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response for %q: %w", id, err)
	}
	c.logger.Debug("hephaistos response",
		zap.String("character", id),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching character %q: status %d: %w", id, resp.StatusCode, ErrCharacterNotFound)
	}

	var gr graphQLResponse
	if err := json.Unmarshal(payload, &gr); err != nil {
		return nil, fmt.Errorf("decoding response for %q: %w", id, err)
	}
	if len(gr.Errors) > 0 {
		msgs := make([]string, 0, len(gr.Errors))
		for _, e := range gr.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, fmt.Errorf("fetching character %q: %s: %w", id, strings.Join(msgs, "; "), ErrCharacterNotFound)
	}

	for _, raw := range gr.Data.Characters {
		var ident struct {
			ID                  string `json:"id"`
			ReadOnlyPermalinkID string `json:"readOnlyPermalinkId"`
		}
		if err := json.Unmarshal(raw, &ident); err != nil {
			continue
		}
		if ident.ReadOnlyPermalinkID == id || ident.ID == id {
			return raw, nil
		}
	}
	return nil, fmt.Errorf("could not access character with id %q: %w", id, ErrCharacterNotFound)
}
