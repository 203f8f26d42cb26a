package logic

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Holiday 公共假日
type Holiday struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Date string `json:"date"`
}

type fixedHoliday struct {
	month time.Month
	day   int
	name  string
}

// 卢旺达法定假日，伊斯兰历的开斋节和古尔邦节日期不固定，不在这里计算
var rwandaFixed = []fixedHoliday{
	{time.January, 1, "New Year's Day"},
	{time.January, 2, "Day after New Year's Day"},
	{time.February, 1, "National Heroes Day"},
	{time.April, 7, "Genocide Memorial Day"},
	{time.May, 1, "Labour Day"},
	{time.July, 1, "Independence Day"},
	{time.July, 4, "National Liberation Day"},
	{time.August, 15, "Assumption"},
	{time.December, 25, "Christmas Day"},
	{time.December, 26, "Boxing Day"},
}

// easter 复活节，公历计算法
func easter(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// firstWeekday 某月第一个指定星期几
func firstWeekday(year int, month time.Month, wd time.Weekday) time.Time {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for t.Weekday() != wd {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// HolidaysOf 某一年的假日，按日期排序
func HolidaysOf(country string, year int) []Holiday {
	if !strings.EqualFold(country, "RW") && country != "" {
		return nil
	}
	days := make([]Holiday, 0, len(rwandaFixed)+3)
	add := func(t time.Time, name string) {
		d := t.Format("2006-01-02")
		days = append(days, Holiday{ID: d, Name: name, Date: d})
	}
	for _, f := range rwandaFixed {
		add(time.Date(year, f.month, f.day, 0, 0, 0, 0, time.UTC), f.name)
	}
	e := easter(year)
	add(e.AddDate(0, 0, -2), "Good Friday")
	add(e.AddDate(0, 0, 1), "Easter Monday")
	add(firstWeekday(year, time.August, time.Friday), "Umuganura Day")
	sort.SliceStable(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}

// UpcomingHolidays 今天之后、今年之内的前 n 个假日
func UpcomingHolidays(country string, now time.Time, n int) []Holiday {
	today := now.Format("2006-01-02")
	out := make([]Holiday, 0, n)
	for _, h := range HolidaysOf(country, now.Year()) {
		if h.Date <= today {
			continue
		}
		out = append(out, h)
		if len(out) == n {
			break
		}
	}
	return out
}

// HolidayCalendar 缓存即将到来的假日，由定时任务每天零点刷新
type HolidayCalendar struct {
	mu       sync.RWMutex
	country  string
	upcoming []Holiday
	day      string
}

func NewHolidayCalendar(country string) *HolidayCalendar {
	return &HolidayCalendar{country: country}
}

func (h *HolidayCalendar) Refresh(now time.Time) {
	list := UpcomingHolidays(h.country, now, 3)
	h.mu.Lock()
	h.upcoming = list
	h.day = now.Format("2006-01-02")
	h.mu.Unlock()
}

// Upcoming 跨天后还没刷新时顺手刷新
func (h *HolidayCalendar) Upcoming(now time.Time) []Holiday {
	h.mu.RLock()
	stale := h.day != now.Format("2006-01-02")
	list := h.upcoming
	h.mu.RUnlock()
	if stale {
		h.Refresh(now)
		h.mu.RLock()
		list = h.upcoming
		h.mu.RUnlock()
	}
	out := make([]Holiday, len(list))
	copy(out, list)
	return out
}
