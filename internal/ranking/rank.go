package ranking

import (
	"sort"

	"github.com/hot-channels-bot/internal/models"
	"github.com/sirupsen/logrus"
)

// NoLimit keeps every active channel in the ranking
const NoLimit = -1

// Decorations shown next to ranked channels
const (
	FirstPlace  = ":first_place_medal:"
	SecondPlace = ":second_place_medal:"
	ThirdPlace  = ":third_place_medal:"
	Celebration = ":tada:"
)

var medals = []string{FirstPlace, SecondPlace, ThirdPlace}

// Row is one ranked channel
type Row struct {
	Position int
	Medal    string
	Count    int
	Channel  models.ChannelMeta
}

// Medal returns the decoration for a zero-based position
func Medal(position int) string {
	if position >= 0 && position < len(medals) {
		return medals[position]
	}
	return Celebration
}

// Rank orders active channels by message count, highest first.
// Channels without messages are left out, ties keep their input order, and at most
// maxEntries rows are returned unless maxEntries is negative.
func Rank(counts []models.MessageCount, metas []models.ChannelMeta, maxEntries int) []Row {
	byID := make(map[string]models.ChannelMeta, len(metas))
	for _, m := range metas {
		byID[m.ID] = m
	}

	active := make([]models.MessageCount, 0, len(counts))
	for _, mc := range counts {
		if mc.Count <= 0 {
			continue
		}
		if _, ok := byID[mc.ChannelID]; !ok {
			logrus.Warnf("Dropping count for unknown channel %s", mc.ChannelID)
			continue
		}
		active = append(active, mc)
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Count > active[j].Count
	})

	if maxEntries >= 0 && len(active) > maxEntries {
		active = active[:maxEntries]
	}

	rows := make([]Row, 0, len(active))
	for i, mc := range active {
		rows = append(rows, Row{
			Position: i,
			Medal:    Medal(i),
			Count:    mc.Count,
			Channel:  byID[mc.ChannelID],
		})
	}
	return rows
}
