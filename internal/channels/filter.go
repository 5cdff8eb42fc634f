package channels

import (
	"fmt"
	"regexp"

	"github.com/hot-channels-bot/internal/apperr"
	"github.com/hot-channels-bot/internal/models"
	"github.com/sirupsen/logrus"
)

// SelectTarget returns the channel whose name equals name exactly.
// The workspace must already contain it; the bot never creates channels.
func SelectTarget(channels []models.ChannelMeta, name string) (models.ChannelMeta, error) {
	for _, c := range channels {
		if c.Name == name {
			return c, nil
		}
	}
	return models.ChannelMeta{}, apperr.Configf("select target",
		"channel %s does not exist in your workspace, create the channel beforehand", name)
}

// CompileExclusions compiles every entry as a pattern that must match a whole channel name
func CompileExclusions(entries []string) ([]*regexp.Regexp, error) {
	patterns := make([]*regexp.Regexp, 0, len(entries))
	for _, entry := range entries {
		re, err := regexp.Compile(`^(?:` + entry + `)$`)
		if err != nil {
			return nil, apperr.New(apperr.KindConfiguration, "compile exclusions",
				fmt.Errorf("invalid exclusion pattern %q: %w", entry, err))
		}
		patterns = append(patterns, re)
	}
	return patterns, nil
}

// Exclude drops channels named exactly like a literal, then channels whose whole name
// matches one of the patterns. The input slice is not modified.
func Exclude(channels []models.ChannelMeta, literals []string, patterns []*regexp.Regexp) []models.ChannelMeta {
	skip := make(map[string]struct{}, len(literals))
	for _, l := range literals {
		skip[l] = struct{}{}
	}

	byName := make([]models.ChannelMeta, 0, len(channels))
	for _, c := range channels {
		if _, ok := skip[c.Name]; ok {
			logrus.Debugf("Excluding channel %s (literal match)", c.Name)
			continue
		}
		byName = append(byName, c)
	}

	anchored := anchorAll(patterns)
	kept := make([]models.ChannelMeta, 0, len(byName))
	for _, c := range byName {
		if i := firstFullMatch(anchored, c.Name); i >= 0 {
			logrus.Debugf("Excluding channel %s (pattern %s)", c.Name, patterns[i].String())
			continue
		}
		kept = append(kept, c)
	}

	logrus.Infof("Kept %d of %d channels after exclusions", len(kept), len(channels))
	return kept
}

// anchorAll wraps each pattern so it only matches whole names.
// Wrapping an already anchored pattern does not change what it matches.
func anchorAll(patterns []*regexp.Regexp) []*regexp.Regexp {
	anchored := make([]*regexp.Regexp, 0, len(patterns))
	for _, re := range patterns {
		anchored = append(anchored, regexp.MustCompile(`^(?:`+re.String()+`)$`))
	}
	return anchored
}

func firstFullMatch(patterns []*regexp.Regexp, name string) int {
	for i, re := range patterns {
		if re.MatchString(name) {
			return i
		}
	}
	return -1
}
