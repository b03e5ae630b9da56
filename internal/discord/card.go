package discord

import (
	"fmt"
	"regexp"
	"strings"
)

// Approval request cards are plain markdown messages: they are both the
// human-facing notification and, when a stored request row cannot be found,
// the fallback source of truth a decision is parsed back out of. Render and
// parse must therefore stay in lockstep.

const notProvided = "(not provided)"

func orNotProvided(s string) string {
	if strings.TrimSpace(s) == "" {
		return notProvided
	}
	return s
}

// LeaveCard holds the fields shown on (and parsed from) a leave request card.
type LeaveCard struct {
	Name   string
	From   string
	To     string
	Days   int
	Reason string
}

func (c LeaveCard) Render() string {
	return fmt.Sprintf(
		"📩 **Leave Request from %s**\n🗓️ **From:** %s\n🗓️ **To:** %s\n🗓️ **Days:** %d\n💬 **Reason:** %s\n\nPlease review and respond accordingly.",
		c.Name, c.From, c.To, c.Days, orNotProvided(c.Reason))
}

type WFHCard struct {
	Name   string
	Date   string
	Reason string
}

func (c WFHCard) Render() string {
	return fmt.Sprintf(
		"🏠 **WFH Request from %s**\n📅 **Date:** %s\n💬 **Reason:** %s\n\nPlease review and respond accordingly.",
		c.Name, c.Date, orNotProvided(c.Reason))
}

type ContentCard struct {
	Requester string
	Topic     string
	Filename  string
	FileURL   string
}

func (c ContentCard) Render() string {
	return fmt.Sprintf(
		"📝 **Content Request from %s**\n📌 **Topic:** %s\n📎 **File:** [%s](%s)\n\nPlease review and respond.",
		c.Requester, c.Topic, c.Filename, c.FileURL)
}

type AssetCard struct {
	Requester string
	AssetName string
	Filename  string
	FileURL   string
}

func (c AssetCard) Render() string {
	return fmt.Sprintf(
		"🧪 **Asset Review Request from %s**\n🏷️ **Name:** %s\n📎 **File:** [%s](%s)\n\nPlease review and respond.",
		c.Requester, c.AssetName, c.Filename, c.FileURL)
}

// StatusFooter is appended to a card when a decision is made; note, if any,
// is the reviewer's rejection note.
func StatusFooter(decision, reviewer, timestamp, note string) string {
	footer := fmt.Sprintf("\n\n**Status:** %s by **%s** at **%s IST**", decision, reviewer, timestamp)
	if note != "" {
		footer += fmt.Sprintf("\n📝 **Rejection Note:** %s", note)
	}
	return footer
}

var mdLinkRe = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

// markdownLinkParts splits "[label](url)" into its parts; both empty when the
// line holds no link.
func markdownLinkParts(line string) (label, url string) {
	m := mdLinkRe.FindStringSubmatch(line)
	if m == nil {
		return "", ""
	}
	return m[1], m[2]
}

// grab returns the text between prefix and the next newline, trimmed.
func grab(prefix, text string) string {
	idx := strings.Index(text, prefix)
	if idx < 0 {
		return ""
	}
	after := text[idx+len(prefix):]
	if nl := strings.IndexByte(after, '\n'); nl >= 0 {
		after = after[:nl]
	}
	return strings.TrimSpace(after)
}

// firstLineName extracts the requester name from the card's first line, trying
// each marker variant older cards may carry.
func firstLineName(content string, markers []string) string {
	first := content
	if nl := strings.IndexByte(first, '\n'); nl >= 0 {
		first = first[:nl]
	}
	first = strings.TrimSpace(first)
	name := first
	for _, marker := range markers {
		if idx := strings.Index(name, marker); idx >= 0 {
			name = name[idx+len(marker):]
			break
		}
	}
	return strings.TrimSpace(strings.Trim(name, "* "))
}

// ParseLeaveCard reads the request fields back out of a leave card's markdown.
func ParseLeaveCard(content string) LeaveCard {
	name := firstLineName(content, []string{
		"**Leave Request from ", "Leave Request from ", "📩 **Leave Request from ",
	})
	days := 0
	if d := grab("**Days:** ", content); d != "" {
		fmt.Sscanf(d, "%d", &days)
	}
	return LeaveCard{
		Name:   name,
		From:   grab("**From:** ", content),
		To:     grab("**To:** ", content),
		Days:   days,
		Reason: grab("**Reason:** ", content),
	}
}

func ParseWFHCard(content string) WFHCard {
	name := firstLineName(content, []string{
		"**WFH Request from ", "WFH Request from ", "🏠 **WFH Request from ",
	})
	date := grab("**Date:** ", content)
	if date == "" {
		date = grab("Date:", content)
	}
	reason := grab("**Reason:** ", content)
	if reason == "" {
		reason = grab("Reason:", content)
	}
	return WFHCard{Name: name, Date: date, Reason: reason}
}

func ParseContentCard(content string) ContentCard {
	requester := firstLineName(content, []string{
		"**Content Request from ", "Content Request from ", "📝 **Content Request from ",
	})
	topic := grab("**Topic:** ", content)
	if topic == "" {
		topic = grab("Topic:", content)
	}
	fileLine := grab("**File:** ", content)
	if fileLine == "" {
		fileLine = grab("File:", content)
	}
	filename, fileURL := markdownLinkParts(fileLine)
	return ContentCard{Requester: requester, Topic: topic, Filename: filename, FileURL: fileURL}
}

func ParseAssetCard(content string) AssetCard {
	requester := firstLineName(content, []string{
		"**Asset Review Request from ", "Asset Review Request from ", "🧪 **Asset Review Request from ",
	})
	assetName := grab("**Name:** ", content)
	if assetName == "" {
		assetName = grab("Name:", content)
	}
	fileLine := grab("**File:** ", content)
	if fileLine == "" {
		fileLine = grab("File:", content)
	}
	filename, fileURL := markdownLinkParts(fileLine)
	return AssetCard{Requester: requester, AssetName: assetName, Filename: filename, FileURL: fileURL}
}
