package storage

import (
	"sync"

	"github.com/gobwas/glob"
)

// ==================== PUB/SUB DATA STRUCTURES ====================

// Subscriber represents a client subscribed to channels/patterns
type Subscriber struct {
	ID       string
	Channels chan *Message // Channel to send messages to subscriber
}

// Message represents a pub/sub message
type Message struct {
	Type    string // "message", "pmessage", "subscribe", "unsubscribe", "psubscribe", "punsubscribe"
	Channel string // Channel name
	Pattern string // Pattern (for pmessage)
	Payload string // Message payload
	Count   int    // Number of active subscriptions (for subscribe/unsubscribe responses)
}

// patternPrefixTrie indexes subscription patterns by their literal prefix
// (the run of characters before the first glob metacharacter), so Publish
// only has to glob-match against candidates that could plausibly apply to
// a given channel instead of every subscribed pattern.
type patternPrefixTrie struct {
	children map[byte]*patternPrefixTrie
	patterns []string
}

func newPatternPrefixTrie() *patternPrefixTrie {
	return &patternPrefixTrie{children: make(map[byte]*patternPrefixTrie)}
}

func globPrefix(pattern string) string {
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '*', '?', '[':
			return pattern[:i]
		}
	}
	return pattern
}

func (t *patternPrefixTrie) insert(pattern string) {
	node := t
	prefix := globPrefix(pattern)
	for i := 0; i < len(prefix); i++ {
		c := prefix[i]
		if node.children[c] == nil {
			node.children[c] = newPatternPrefixTrie()
		}
		node = node.children[c]
	}
	node.patterns = append(node.patterns, pattern)
}

func (t *patternPrefixTrie) remove(pattern string) {
	node := t
	prefix := globPrefix(pattern)
	for i := 0; i < len(prefix); i++ {
		c := prefix[i]
		if node.children[c] == nil {
			return
		}
		node = node.children[c]
	}
	for i, p := range node.patterns {
		if p == pattern {
			node.patterns = append(node.patterns[:i], node.patterns[i+1:]...)
			return
		}
	}
}

// candidates returns every pattern whose literal prefix is a prefix of (or
// equal to) channel.
func (t *patternPrefixTrie) candidates(channel string) []string {
	result := append([]string(nil), t.patterns...)
	node := t
	for i := 0; i < len(channel); i++ {
		next := node.children[channel[i]]
		if next == nil {
			break
		}
		node = next
		result = append(result, node.patterns...)
	}
	return result
}

// PubSub manages publish/subscribe functionality
type PubSub struct {
	channels map[string]map[string]*Subscriber // channel -> subscriberID -> subscriber
	patterns map[string]map[string]*Subscriber // pattern -> subscriberID -> subscriber

	subscriberChannels map[string]map[string]bool // subscriberID -> channels
	subscriberPatterns map[string]map[string]bool // subscriberID -> patterns
	subscribers        map[string]*Subscriber     // subscriberID -> Subscriber (shared across subscriptions)

	prefixTrie     *patternPrefixTrie
	compiledGlobs  map[string]glob.Glob

	mu sync.RWMutex
}

// NewPubSub creates a new PubSub instance
func NewPubSub() *PubSub {
	return &PubSub{
		channels:           make(map[string]map[string]*Subscriber),
		patterns:           make(map[string]map[string]*Subscriber),
		subscriberChannels: make(map[string]map[string]bool),
		subscriberPatterns: make(map[string]map[string]bool),
		subscribers:        make(map[string]*Subscriber),
		prefixTrie:         newPatternPrefixTrie(),
		compiledGlobs:      make(map[string]glob.Glob),
	}
}

// ==================== SUBSCRIPTION OPERATIONS ====================

// Subscribe subscribes a client to one or more channels
func (ps *PubSub) Subscribe(subscriberID string, sub *Subscriber, channels ...string) []string {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if existing, ok := ps.subscribers[subscriberID]; ok {
		sub = existing
	} else {
		ps.subscribers[subscriberID] = sub
	}

	if ps.subscriberChannels[subscriberID] == nil {
		ps.subscriberChannels[subscriberID] = make(map[string]bool)
	}

	subscribed := make([]string, 0, len(channels))

	for _, channel := range channels {
		if ps.channels[channel] == nil {
			ps.channels[channel] = make(map[string]*Subscriber)
		}
		ps.channels[channel][subscriberID] = sub
		ps.subscriberChannels[subscriberID][channel] = true
		subscribed = append(subscribed, channel)
	}

	return subscribed
}

// Unsubscribe unsubscribes a client from one or more channels.
// If no channels specified, unsubscribes from all channels.
func (ps *PubSub) Unsubscribe(subscriberID string, channels ...string) []string {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	unsubscribed := make([]string, 0)

	if len(channels) == 0 {
		for channel := range ps.subscriberChannels[subscriberID] {
			channels = append(channels, channel)
		}
	}

	for _, channel := range channels {
		if subs, exists := ps.channels[channel]; exists {
			delete(subs, subscriberID)
			if len(subs) == 0 {
				delete(ps.channels, channel)
			}
		}
		if ps.subscriberChannels[subscriberID] != nil {
			delete(ps.subscriberChannels[subscriberID], channel)
		}
		unsubscribed = append(unsubscribed, channel)
	}

	return unsubscribed
}

// PSubscribe subscribes a client to one or more glob patterns.
func (ps *PubSub) PSubscribe(subscriberID string, sub *Subscriber, patterns ...string) []string {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if existing, ok := ps.subscribers[subscriberID]; ok {
		sub = existing
	} else {
		ps.subscribers[subscriberID] = sub
	}

	if ps.subscriberPatterns[subscriberID] == nil {
		ps.subscriberPatterns[subscriberID] = make(map[string]bool)
	}

	subscribed := make([]string, 0, len(patterns))

	for _, pattern := range patterns {
		if ps.patterns[pattern] == nil {
			ps.patterns[pattern] = make(map[string]*Subscriber)
			ps.prefixTrie.insert(pattern)
			if g, err := glob.Compile(pattern); err == nil {
				ps.compiledGlobs[pattern] = g
			}
		}

		ps.patterns[pattern][subscriberID] = sub
		ps.subscriberPatterns[subscriberID][pattern] = true
		subscribed = append(subscribed, pattern)
	}

	return subscribed
}

// PUnsubscribe unsubscribes a client from one or more patterns.
// If no patterns specified, unsubscribes from all patterns.
func (ps *PubSub) PUnsubscribe(subscriberID string, patterns ...string) []string {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	unsubscribed := make([]string, 0)

	if len(patterns) == 0 {
		for pattern := range ps.subscriberPatterns[subscriberID] {
			patterns = append(patterns, pattern)
		}
	}

	for _, pattern := range patterns {
		if subs, exists := ps.patterns[pattern]; exists {
			delete(subs, subscriberID)
			if len(subs) == 0 {
				delete(ps.patterns, pattern)
				ps.prefixTrie.remove(pattern)
				delete(ps.compiledGlobs, pattern)
			}
		}
		if ps.subscriberPatterns[subscriberID] != nil {
			delete(ps.subscriberPatterns[subscriberID], pattern)
		}
		unsubscribed = append(unsubscribed, pattern)
	}

	return unsubscribed
}

// ==================== PUBLISHING OPERATIONS ====================

// Publish publishes a message to a channel.
// Returns the number of subscribers that received the message.
func (ps *PubSub) Publish(channel string, payload string) int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	count := 0

	if subs, exists := ps.channels[channel]; exists {
		msg := &Message{Type: "message", Channel: channel, Payload: payload}
		for _, sub := range subs {
			select {
			case sub.Channels <- msg:
				count++
			default:
			}
		}
	}

	for _, pattern := range ps.prefixTrie.candidates(channel) {
		subs, exists := ps.patterns[pattern]
		if !exists {
			continue
		}
		g := ps.compiledGlobs[pattern]
		if g == nil || !g.Match(channel) {
			continue
		}

		msg := &Message{Type: "pmessage", Pattern: pattern, Channel: channel, Payload: payload}
		for _, sub := range subs {
			select {
			case sub.Channels <- msg:
				count++
			default:
			}
		}
	}

	return count
}

// ==================== INTROSPECTION OPERATIONS ====================

// NumSub returns the number of subscribers for specified channels.
func (ps *PubSub) NumSub(channels ...string) map[string]int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	result := make(map[string]int)
	for _, channel := range channels {
		result[channel] = len(ps.channels[channel])
	}
	return result
}

// NumPat returns the number of unique patterns subscribed to.
func (ps *PubSub) NumPat() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.patterns)
}

// Channels returns all active channels, optionally filtered by a glob
// pattern (empty pattern returns every active channel).
func (ps *PubSub) Channels(pattern string) []string {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	var g glob.Glob
	if pattern != "" {
		g, _ = glob.Compile(pattern)
	}

	channels := make([]string, 0, len(ps.channels))
	for channel := range ps.channels {
		if g == nil || g.Match(channel) {
			channels = append(channels, channel)
		}
	}
	return channels
}

// Patterns returns every pattern with at least one active subscriber,
// optionally filtered by a glob pattern over the pattern strings themselves
// (backs a PUBSUB PATTERNS introspection extension).
func (ps *PubSub) Patterns(filter string) []string {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	var g glob.Glob
	if filter != "" {
		g, _ = glob.Compile(filter)
	}

	patterns := make([]string, 0, len(ps.patterns))
	for pattern := range ps.patterns {
		if g == nil || g.Match(pattern) {
			patterns = append(patterns, pattern)
		}
	}
	return patterns
}

// GetSubscriberCount returns the total number of subscriptions (channels
// plus patterns) held by a subscriber.
func (ps *PubSub) GetSubscriberCount(subscriberID string) int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	count := len(ps.subscriberChannels[subscriberID]) + len(ps.subscriberPatterns[subscriberID])
	return count
}

// RemoveSubscriber removes a subscriber from all channels and patterns
// (called on client disconnect).
func (ps *PubSub) RemoveSubscriber(subscriberID string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	for channel := range ps.subscriberChannels[subscriberID] {
		if subs, exists := ps.channels[channel]; exists {
			delete(subs, subscriberID)
			if len(subs) == 0 {
				delete(ps.channels, channel)
			}
		}
	}
	delete(ps.subscriberChannels, subscriberID)

	for pattern := range ps.subscriberPatterns[subscriberID] {
		if subs, exists := ps.patterns[pattern]; exists {
			delete(subs, subscriberID)
			if len(subs) == 0 {
				delete(ps.patterns, pattern)
				ps.prefixTrie.remove(pattern)
				delete(ps.compiledGlobs, pattern)
			}
		}
	}
	delete(ps.subscriberPatterns, subscriberID)

	delete(ps.subscribers, subscriberID)
}

// GetSubscriber returns the subscriber object for a subscriber ID.
func (ps *PubSub) GetSubscriber(subscriberID string) *Subscriber {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.subscribers[subscriberID]
}
