package slack

import (
	"context"
	"fmt"
	"strings"

	"listscribe"
)

// Notifier posts a freshly parsed checklist to a channel.
type Notifier struct {
	client  listscribe.SlackClient
	channel string
}

func NewNotifier(client listscribe.SlackClient, channel string) *Notifier {
	return &Notifier{client: client, channel: channel}
}

func (n *Notifier) Notify(ctx context.Context, msg listscribe.ChatMessage) error {
	items, err := msg.GroceryItems()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return n.client.PostMessage(ctx, n.channel, FormatChecklist(items))
}

// FormatChecklist renders items grouped by category in first-seen order,
// one mrkdwn bullet per item.
func FormatChecklist(items []listscribe.GroceryItem) string {
	var (
		order  []string
		groups = map[string][]listscribe.GroceryItem{}
	)
	for _, it := range items {
		if _, seen := groups[it.Category]; !seen {
			order = append(order, it.Category)
		}
		groups[it.Category] = append(groups[it.Category], it)
	}

	var b strings.Builder
	fmt.Fprintf(&b, ":memo: New grocery list (%d items)\n", len(items))
	for _, cat := range order {
		group := groups[cat]
		fmt.Fprintf(&b, "\n*%s* %s\n", cat, group[0].Emoji)
		for _, it := range group {
			mark := ":white_large_square:"
			if it.Checked {
				mark = ":white_check_mark:"
			}
			fmt.Fprintf(&b, "%s %s\n", mark, it.Name)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
