// Package playlist 将 M3U 文本中体育分组的条目聚合为待匹配候选
package playlist

import (
	"regexp"
	"strings"

	"MatchSync/internal/model"
	"MatchSync/internal/normalize"

	"github.com/sirupsen/logrus"
)

const extinfPrefix = "#EXTINF:"

var (
	tvgIDAttr      = regexp.MustCompile(`tvg-id="([^"]*)"`)
	tvgNameAttr    = regexp.MustCompile(`tvg-name="([^"]*)"`)
	groupTitleAttr = regexp.MustCompile(`group-title="([^"]*)"`)
)

// Rules 分组过滤规则
type Rules struct {
	GroupPrefix string   // 体育-
	DaySuffixes []string // 昨天/今天/明天
}

// DefaultRules 体育-昨天/今天/明天
func DefaultRules() Rules {
	return Rules{GroupPrefix: "体育-", DaySuffixes: []string{"昨天", "今天", "明天"}}
}

func (r Rules) accepts(groupTag string) bool {
	if !strings.HasPrefix(groupTag, r.GroupPrefix) {
		return false
	}
	suffix := strings.TrimPrefix(groupTag, r.GroupPrefix)
	for _, s := range r.DaySuffixes {
		if suffix == s {
			return true
		}
	}
	return false
}

// Aggregator M3U 聚合器，无状态，可重复使用
type Aggregator struct {
	rules  Rules
	logger *logrus.Logger
}

func NewAggregator(rules Rules, logger *logrus.Logger) *Aggregator {
	return &Aggregator{rules: rules, logger: logger}
}

// Aggregate 解析 M3U 文本，按去空白后的 tvg-id 聚合。
// 单条格式异常只跳过该条，不影响其它条目。
func (a *Aggregator) Aggregate(content string) *model.CandidateSet {
	set := model.NewCandidateSet()
	lines := strings.Split(content, "\n")

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, extinfPrefix) {
			continue
		}

		entry, ok := a.parseMarker(line)
		if !ok {
			continue
		}

		// 下一条非空行为 URL
		j := i + 1
		for j < len(lines) && strings.TrimSpace(lines[j]) == "" {
			j++
		}
		if j >= len(lines) {
			break
		}
		entry.URL = strings.TrimSpace(lines[j])
		i = j

		a.collect(set, entry)
	}

	a.logger.Infof("M3U 数据聚合完成，共 %d 个唯一 tvg-id", set.Len())
	return set
}

// parseMarker 解析 #EXTINF 行的三个属性并按分组过滤
func (a *Aggregator) parseMarker(line string) (model.PlaylistEntry, bool) {
	id := tvgIDAttr.FindStringSubmatch(line)
	name := tvgNameAttr.FindStringSubmatch(line)
	group := groupTitleAttr.FindStringSubmatch(line)
	if id == nil || name == nil || group == nil {
		return model.PlaylistEntry{}, false
	}
	if !a.rules.accepts(group[1]) {
		return model.PlaylistEntry{}, false
	}
	return model.PlaylistEntry{
		IdentifierRaw: id[1],
		DisplayName:   name[1],
		GroupTag:      group[1],
	}, true
}

// collect 拆分 tvg-name 为 赛事名 / 名称 / 时间 并写入聚合集合
func (a *Aggregator) collect(set *model.CandidateSet, entry model.PlaylistEntry) {
	displayName := entry.DisplayName
	first := strings.Index(displayName, " ")
	if first == -1 {
		a.logger.WithField("tvg_name", displayName).Debug("tvg-name 无空格，跳过")
		return
	}
	last := strings.LastIndex(displayName, " ")

	clock := strings.TrimSpace(displayName[last+1:])
	if !normalize.IsClock(clock) {
		a.logger.WithField("tvg_name", displayName).Debug("tvg-name 末尾不是时间，跳过")
		return
	}

	competitionName := displayName[:first]
	var middle string
	if last > first {
		middle = strings.TrimSpace(displayName[first+1 : last])
	}

	name := middle
	if entry.IdentifierRaw != "" {
		name = strings.ReplaceAll(middle, entry.IdentifierRaw, "")
	}
	name = strings.TrimSpace(name)

	key := normalize.StripSpace(entry.IdentifierRaw)
	set.Add(key, entry.IdentifierRaw, competitionName, clock, model.CandidateNode{Name: name, URL: entry.URL})
}
