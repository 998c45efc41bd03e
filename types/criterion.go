package types

import "strings"

// Criterion 过滤条件：All 或某个状态；只存在于进程内，不持久化
type Criterion struct {
	all    bool
	status Status
}

var (
	CriterionAll   = Criterion{all: true}
	CriterionUnset = Criterion{status: StatusUnset}
)

func ByStatus(s Status) Criterion {
	return Criterion{status: s}
}

func (c Criterion) IsAll() bool { return c.all }

func (c Criterion) Status() Status { return c.status }

func (c Criterion) Match(t Task) bool {
	return c.all || t.Status == c.status
}

func (c Criterion) String() string {
	if c.all {
		return "All"
	}
	return c.status.String()
}

// ParseCriterion "all"（不区分大小写）返回 CriterionAll，其余按状态解析
func ParseCriterion(s string) (Criterion, error) {
	if strings.EqualFold(strings.TrimSpace(s), "all") {
		return CriterionAll, nil
	}
	st, err := ParseStatus(s)
	if err != nil {
		return Criterion{}, err
	}
	return ByStatus(st), nil
}

// Criteria 过滤选择器的循环顺序
func Criteria() []Criterion {
	out := []Criterion{CriterionAll}
	for _, s := range Statuses {
		out = append(out, ByStatus(s))
	}
	return append(out, CriterionUnset)
}
