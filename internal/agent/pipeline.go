// Package agent implements the command router and generation pipeline behind
// the chat agent.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ychia112/GroceryShopperAI/internal/domain"
	"github.com/ychia112/GroceryShopperAI/internal/llm"
	"github.com/ychia112/GroceryShopperAI/internal/metrics"
	"github.com/ychia112/GroceryShopperAI/internal/store"
)

// AgentName is the display name attached to agent-authored messages.
const AgentName = "LLM Bot"

// MentionToken addresses the agent inside a message body.
const MentionToken = "@gro"

// Trigger literals, matched case-insensitively as substrings. Order matters:
// sub-commands are checked before the generic mention so "@gro menu" never
// falls through to a plain reply.
const (
	triggerInventory = "@gro inventory"
	triggerAnalyze   = "@gro analyze"
	triggerMenu      = "@gro menu"
	triggerRestock   = "@gro restock"
	triggerPlan      = "@gro plan"
)

const retrievalLimitPerTerm = 20

// catalogSampleMax caps how many catalog rows are handed to the restock
// prompt.
const catalogSampleMax = 30

// Generator is the generation contract the pipeline depends on; *llm.Registry
// satisfies it.
type Generator interface {
	Generate(ctx context.Context, backend string, turns []llm.Turn, params llm.Params) (string, error)
	Has(name string) bool
	Default() string
}

// Retriever fetches catalog candidates for product terms.
type Retriever interface {
	FindRelatedForTerms(ctx context.Context, terms []string, limitPerTerm int) []domain.GroceryItem
}

// Broadcaster fans a payload out to a room's subscribers.
type Broadcaster interface {
	Broadcast(roomID int64, payload any)
}

// Pipeline routes triggered messages to their handlers and emits results
// through the broadcaster. Invocations run detached on the worker pool; every
// branch ends in at least one visible broadcast.
type Pipeline struct {
	store        store.Store
	broadcaster  Broadcaster
	generator    Generator
	retriever    Retriever
	pool         *Pool
	runTimeout   time.Duration
	historyLimit int
	log          zerolog.Logger
}

// NewPipeline creates a pipeline.
func NewPipeline(st store.Store, b Broadcaster, g Generator, r Retriever, pool *Pool, historyLimit int, log zerolog.Logger) *Pipeline {
	if historyLimit <= 0 {
		historyLimit = 50
	}
	return &Pipeline{
		store:        st,
		broadcaster:  b,
		generator:    g,
		retriever:    r,
		pool:         pool,
		runTimeout:   5 * time.Minute,
		historyLimit: historyLimit,
		log:          log.With().Str("component", "pipeline").Logger(),
	}
}

// Dispatch submits one detached pipeline invocation for a freshly posted
// message. It returns immediately; results arrive later as broadcasts.
// Failures inside the invocation are caught and surfaced as agent messages,
// never propagated to the caller.
func (p *Pipeline) Dispatch(roomID, userID int64, content string) {
	runID := "run_" + uuid.New().String()[:8]
	p.pool.Submit(func() {
		defer func() {
			if r := recover(); r != nil {
				p.log.Error().Str("run", runID).Any("panic", r).Msg("pipeline invocation panicked")
				p.sendAgentMessage(context.Background(), roomID, "(agent error) something went wrong while handling that request")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), p.runTimeout)
		defer cancel()
		p.run(ctx, runID, roomID, userID, content)
	})
}

// run classifies the message and executes the matching handler. First match
// wins; an untriggered message is ignored.
func (p *Pipeline) run(ctx context.Context, runID string, roomID, userID int64, content string) {
	lower := asciiLower(content)

	var branch string
	switch {
	case strings.Contains(lower, triggerInventory):
		branch = "inventory"
	case strings.Contains(lower, triggerAnalyze):
		branch = "analysis"
	case strings.Contains(lower, triggerMenu):
		branch = "menu"
	case strings.Contains(lower, triggerRestock):
		branch = "restock"
	case strings.Contains(lower, triggerPlan):
		branch = "plan"
	case strings.Contains(lower, MentionToken):
		branch = "mention"
	default:
		return
	}

	metrics.PipelineRunsTotal.WithLabelValues(branch).Inc()
	log := p.log.With().Str("run", runID).Str("branch", branch).Int64("room", roomID).Logger()
	log.Info().Msg("pipeline invocation started")

	switch branch {
	case "inventory":
		p.handleInventoryIngest(ctx, roomID, userID, content)
	case "analysis":
		p.handleAnalysis(ctx, log, roomID, userID)
	case "menu":
		p.handleMenu(ctx, log, roomID, userID)
	case "restock":
		p.handleRestock(ctx, log, roomID, userID)
	case "plan":
		p.handlePlan(ctx, log, roomID, userID)
	case "mention":
		p.handleMention(ctx, log, roomID, userID, content)
	}
}

// resolveBackend resolves the acting user's preferred backend once, at the
// start of a branch. An unset or unknown preference falls back to the default
// backend; the unknown case is a configuration defect and logged as such.
func (p *Pipeline) resolveBackend(ctx context.Context, userID int64) string {
	user, err := p.store.GetUser(ctx, userID)
	if err != nil || user == nil {
		return p.generator.Default()
	}
	pref := user.PreferredLLMBackend
	if pref == "" {
		return p.generator.Default()
	}
	if !p.generator.Has(pref) {
		p.log.Error().Str("backend", pref).Int64("user", userID).Msg("stored backend preference is not registered")
		return p.generator.Default()
	}
	return pref
}

// inventorySnapshot loads the user's inventory and splits it by the safety
// threshold: stock below safety level is low, everything else healthy.
func (p *Pipeline) inventorySnapshot(ctx context.Context, userID int64) (all, low, healthy []domain.InventoryLine, err error) {
	items, err := p.store.ListInventory(ctx, userID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load inventory: %w", err)
	}
	for _, it := range items {
		line := domain.InventoryLine{
			ProductName:      it.ProductName,
			Stock:            it.Stock,
			SafetyStockLevel: it.SafetyStockLevel,
		}
		all = append(all, line)
		if it.Stock < it.SafetyStockLevel {
			low = append(low, line)
		} else {
			healthy = append(healthy, line)
		}
	}
	return all, low, healthy, nil
}

func lineNames(lines []domain.InventoryLine) []string {
	names := make([]string, 0, len(lines))
	for _, l := range lines {
		names = append(names, l.ProductName)
	}
	return names
}

func (p *Pipeline) handleAnalysis(ctx context.Context, log zerolog.Logger, roomID, userID int64) {
	backend := p.resolveBackend(ctx, userID)

	all, low, healthy, err := p.inventorySnapshot(ctx, userID)
	if err != nil {
		p.sendAgentMessage(ctx, roomID, "(agent error) "+err.Error())
		return
	}

	candidates := p.retriever.FindRelatedForTerms(ctx, lineNames(low), retrievalLimitPerTerm)

	payload := map[string]any{
		"inventory_items": all,
		"low_stock":       low,
		"healthy":         healthy,
		"grocery_items":   candidates,
	}
	raw, err := p.generator.Generate(ctx, backend, []llm.Turn{
		{Role: llm.RoleSystem, Content: analysisSystemPrompt},
		{Role: llm.RoleUser, Content: mustJSON(payload)},
	}, llm.DefaultParams())
	if err != nil {
		p.sendAgentMessage(ctx, roomID, "(agent error) "+err.Error())
		return
	}

	res := decodeAnalysis(llm.ExtractJSON(raw), low, healthy)
	res.Narrative += " If you need a restock plan, type '@gro restock'."

	p.broadcaster.Broadcast(roomID, domain.AIEvent{
		Type:      "ai_event",
		Event:     domain.EventAnalysis,
		RoomID:    roomID,
		Narrative: res.Narrative,
		Payload:   res,
	})
	p.sendAgentMessage(ctx, roomID, "Inventory analysis posted.")
	log.Info().Msg("analysis event broadcast")
}

func (p *Pipeline) handleMenu(ctx context.Context, log zerolog.Logger, roomID, userID int64) {
	backend := p.resolveBackend(ctx, userID)

	all, _, _, err := p.inventorySnapshot(ctx, userID)
	if err != nil {
		p.sendAgentMessage(ctx, roomID, "(agent error) "+err.Error())
		return
	}

	// Menu generation retrieves against the entire inventory, not just
	// low-stock items.
	candidates := p.retriever.FindRelatedForTerms(ctx, lineNames(all), retrievalLimitPerTerm)

	userPrompt := fmt.Sprintf("Available ingredients:\n%s\n\nCatalog candidates:\n%s\n\nGenerate possible dishes.",
		mustJSON(all), mustJSON(candidates))
	raw, err := p.generator.Generate(ctx, backend, []llm.Turn{
		{Role: llm.RoleSystem, Content: menuSystemPrompt},
		{Role: llm.RoleUser, Content: userPrompt},
	}, llm.DefaultParams())
	if err != nil {
		p.sendAgentMessage(ctx, roomID, "(agent error) "+err.Error())
		return
	}

	res := decodeMenu(llm.ExtractJSON(raw), raw)
	p.broadcaster.Broadcast(roomID, domain.AIEvent{
		Type:      "ai_event",
		Event:     domain.EventMenu,
		RoomID:    roomID,
		Narrative: res.Narrative,
		Payload:   res,
	})
	p.sendAgentMessage(ctx, roomID, "Menu suggestions posted.")
	log.Info().Msg("menu event broadcast")
}

func (p *Pipeline) handleRestock(ctx context.Context, log zerolog.Logger, roomID, userID int64) {
	backend := p.resolveBackend(ctx, userID)

	all, low, _, err := p.inventorySnapshot(ctx, userID)
	if err != nil {
		p.sendAgentMessage(ctx, roomID, "(agent error) "+err.Error())
		return
	}

	// Restock planning retrieves for low-stock items only.
	candidates := p.retriever.FindRelatedForTerms(ctx, lineNames(low), retrievalLimitPerTerm)
	if len(candidates) > catalogSampleMax {
		candidates = candidates[:catalogSampleMax]
	}

	userPrompt := fmt.Sprintf("Inventory: %s\n\nGrocery catalog sample: %s\n\nCreate a weekly restock plan with suppliers.",
		mustJSON(all), mustJSON(candidates))
	raw, err := p.generator.Generate(ctx, backend, []llm.Turn{
		{Role: llm.RoleSystem, Content: restockSystemPrompt},
		{Role: llm.RoleUser, Content: userPrompt},
	}, llm.DefaultParams())
	if err != nil {
		p.sendAgentMessage(ctx, roomID, "(agent error) "+err.Error())
		return
	}

	res := decodeRestock(llm.ExtractJSON(raw), raw)
	p.broadcaster.Broadcast(roomID, domain.AIEvent{
		Type:      "ai_event",
		Event:     domain.EventRestock,
		RoomID:    roomID,
		Narrative: res.Narrative,
		Payload:   res,
	})
	p.sendAgentMessage(ctx, roomID, "Restock plan posted.")
	log.Info().Msg("restock event broadcast")
}

func (p *Pipeline) handlePlan(ctx context.Context, log zerolog.Logger, roomID, userID int64) {
	backend := p.resolveBackend(ctx, userID)

	history, err := p.store.ListRoomMessages(ctx, roomID, p.historyLimit)
	if err != nil {
		p.sendAgentMessage(ctx, roomID, "(agent error) "+err.Error())
		return
	}
	chatText := formatChatHistory(history)

	inferredGoal := p.extractGoal(ctx, backend, chatText)

	userPayload := map[string]any{
		"inferred_goal":     inferredGoal,
		"chat_history_text": chatText,
	}
	raw, err := p.generator.Generate(ctx, backend, []llm.Turn{
		{Role: llm.RoleSystem, Content: planSystemPrompt},
		{Role: llm.RoleUser, Content: mustJSON(userPayload)},
	}, llm.DefaultParams())
	if err != nil {
		p.sendAgentMessage(ctx, roomID, "(agent error) "+err.Error())
		return
	}

	res := decodePlan(llm.ExtractJSON(raw), inferredGoal)
	p.broadcaster.Broadcast(roomID, domain.AIEvent{
		Type:      "ai_event",
		Event:     domain.EventProcurementPlan,
		RoomID:    roomID,
		Narrative: res.Narrative,
		Payload:   res,
	})
	log.Info().Msg("procurement plan event broadcast")
}

// extractGoal asks the backend for the group's event goal. A failed call
// yields an empty goal, not a branch failure.
func (p *Pipeline) extractGoal(ctx context.Context, backend, chatText string) string {
	raw, err := p.generator.Generate(ctx, backend, []llm.Turn{
		{Role: llm.RoleSystem, Content: goalSystemPrompt},
		{Role: llm.RoleUser, Content: "Chat history:\n" + chatText + "\n\nExtract the goal in JSON."},
	}, llm.DefaultParams())
	if err != nil {
		return ""
	}
	goal, _ := llm.ExtractJSON(raw)["goal"].(string)
	return goal
}

func (p *Pipeline) handleMention(ctx context.Context, log zerolog.Logger, roomID, userID int64, content string) {
	backend := p.resolveBackend(ctx, userID)

	stripped := strings.TrimSpace(stripMention(content))
	question := stripped
	// Recent room history gives the reply conversational context; a history
	// load failure degrades to a context-free reply.
	if history, err := p.store.ListRoomMessages(ctx, roomID, p.historyLimit); err == nil && len(history) > 0 {
		question = "Conversation so far:\n" + formatChatHistory(history) +
			"\n\nReply to the latest request: " + stripped
	}
	reply, err := p.generator.Generate(ctx, backend, []llm.Turn{
		{Role: llm.RoleSystem, Content: chatSystemPrompt},
		{Role: llm.RoleUser, Content: question},
	}, llm.DefaultParams())
	if err != nil {
		// The error text itself becomes the agent's reply; a triggered
		// request is never silently dropped.
		reply = "(LLM error) " + err.Error()
	}

	p.sendAgentMessage(ctx, roomID, reply)
	log.Info().Msg("mention reply broadcast")
}

// stripMention removes every occurrence of the mention token regardless of
// casing.
func stripMention(content string) string {
	var sb strings.Builder
	for {
		i := asciiIndexFold(content, MentionToken)
		if i < 0 {
			sb.WriteString(content)
			return sb.String()
		}
		sb.WriteString(content[:i])
		content = content[i+len(MentionToken):]
	}
}

// asciiLower lowercases ASCII letters only. Unlike strings.ToLower it
// preserves byte length, so indices into the folded string are valid in the
// original; the trigger literals are pure ASCII, so nothing else needs to
// fold.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// asciiIndexFold returns the byte offset in s of the first case-insensitive
// occurrence of an all-ASCII, all-lowercase pattern, or -1.
func asciiIndexFold(s, pattern string) int {
	return strings.Index(asciiLower(s), pattern)
}

// sendAgentMessage persists an agent-authored message and broadcasts it. A
// store failure is logged but does not suppress the broadcast: every
// triggered command produces at least one visible outcome.
func (p *Pipeline) sendAgentMessage(ctx context.Context, roomID int64, content string) {
	msg := &domain.Message{
		RoomID:  roomID,
		Content: content,
		IsBot:   true,
	}
	if err := p.store.CreateMessage(ctx, msg); err != nil {
		p.log.Error().Err(err).Int64("room", roomID).Msg("failed to persist agent message")
		msg.CreatedAt = time.Now().UTC()
	}

	p.broadcaster.Broadcast(roomID, domain.MessageBroadcast{
		Type:   "message",
		RoomID: roomID,
		Message: domain.MessageView{
			ID:        msg.ID,
			Username:  AgentName,
			Content:   msg.Content,
			IsBot:     true,
			CreatedAt: msg.CreatedAt.Format(time.RFC3339),
		},
	})
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
