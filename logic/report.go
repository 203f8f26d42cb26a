package logic

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"leave/model/entity"
	"leave/model/params"

	"github.com/pkg/errors"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	ReportLeaveSummary       = "leave-summary"
	ReportDepartmentAnalysis = "department-analysis"
	ReportEmployeeHistory    = "employee-history"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv; charset=utf-8"
)

var (
	ErrUnknownReport     = errors.New("Unknown report")
	ErrInvalidReportDate = errors.New("Invalid date filter")
)

// ReportDef 报表目录里的一项
type ReportDef struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Type          string `json:"type"`
	Format        string `json:"format"`
	LastGenerated string `json:"lastGenerated,omitempty"`
}

var reportCatalogue = []ReportDef{
	{
		ID:          ReportLeaveSummary,
		Name:        "Leave Summary Report",
		Description: "Summary of all leave requests by department",
		Type:        "Excel",
		Format:      "xlsx",
	},
	{
		ID:          ReportDepartmentAnalysis,
		Name:        "Department Leave Analysis",
		Description: "Detailed analysis of leave patterns by department",
		Type:        "CSV",
		Format:      "csv",
	},
	{
		ID:          ReportEmployeeHistory,
		Name:        "Employee Leave History",
		Description: "Complete leave history for all employees",
		Type:        "Excel",
		Format:      "xlsx",
	},
}

// Archive 报表生成记录，dao/mysql.ReportArchive 实现
type Archive interface {
	Record(ctx context.Context, run *entity.ReportRun) error
	LastGenerated(ctx context.Context) (map[string]time.Time, error)
}

// ReportFile 生成好的报表文件
type ReportFile struct {
	ReportID    string
	Filename    string
	ContentType string
	Body        []byte
	Rows        int
}

func findReport(id string) (ReportDef, bool) {
	for _, def := range reportCatalogue {
		if def.ID == id {
			return def, true
		}
	}
	return ReportDef{}, false
}

// ListReports 报表目录，type 过滤 excel/csv；archive 可以为 nil
func ListReports(ctx context.Context, archive Archive, f params.ParamReport) ([]ReportDef, error) {
	var last map[string]time.Time
	if archive != nil {
		var err error
		if last, err = archive.LastGenerated(ctx); err != nil {
			return nil, err
		}
	}
	out := make([]ReportDef, 0, len(reportCatalogue))
	for _, def := range reportCatalogue {
		if f.Type != "" && f.Type != "all" && !strings.EqualFold(f.Type, def.Type) {
			continue
		}
		if t, ok := last[def.ID]; ok {
			def.LastGenerated = t.Format("2006-01-02")
		}
		out = append(out, def)
	}
	return out, nil
}

type reportFilter struct {
	department string
	from, to   time.Time
}

func newReportFilter(f params.ParamReport) (reportFilter, error) {
	rf := reportFilter{department: strings.TrimSpace(f.Department)}
	if rf.department == "all" {
		rf.department = ""
	}
	from, err := entity.ParseDate(f.From)
	if err != nil {
		return rf, ErrInvalidReportDate
	}
	to, err := entity.ParseDate(f.To)
	if err != nil {
		return rf, ErrInvalidReportDate
	}
	rf.from = from.Time
	if !to.IsZero() {
		// to 当天也算
		rf.to = to.Time.AddDate(0, 0, 1)
	}
	return rf, nil
}

func (rf reportFilter) match(r entity.LeaveRequest, dept string) bool {
	if rf.department != "" && !strings.EqualFold(rf.department, dept) {
		return false
	}
	if !rf.from.IsZero() && r.StartDate.Before(rf.from) {
		return false
	}
	if !rf.to.IsZero() && !r.StartDate.Before(rf.to) {
		return false
	}
	return true
}

// reportRow 请假记录加上申请人信息
type reportRow struct {
	entity.LeaveRequest
	Employee   string
	Email      string
	Department string
}

func reportRows(members []entity.TeamMember, requests []entity.LeaveRequest, rf reportFilter) []reportRow {
	byID := make(map[entity.ID]entity.User, len(members))
	for _, m := range members {
		byID[m.ID] = m.User
	}
	rows := make([]reportRow, 0, len(requests))
	for _, r := range requests {
		var u entity.User
		if r.User != nil {
			u = *r.User
			if known, ok := byID[u.ID]; ok {
				if u.Department == "" {
					u.Department = known.Department
				}
				if u.FullName() == "" {
					u.FirstName, u.LastName, u.Name = known.FirstName, known.LastName, known.Name
				}
				if u.Email == "" {
					u.Email = known.Email
				}
			}
		}
		dept := u.Department
		if dept == "" {
			dept = "Unassigned"
		}
		if !rf.match(r, dept) {
			continue
		}
		rows = append(rows, reportRow{LeaveRequest: r, Employee: u.FullName(), Email: u.Email, Department: dept})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].StartDate.Before(rows[j].StartDate.Time) })
	return rows
}

// GenerateReport 拉取全部请假记录和团队成员，按筛选条件生成报表并记录
func GenerateReport(ctx context.Context, s *Session, archive Archive, id string, f params.ParamReport, now time.Time) (*ReportFile, error) {
	def, ok := findReport(id)
	if !ok {
		return nil, ErrUnknownReport
	}
	rf, err := newReportFilter(f)
	if err != nil {
		return nil, err
	}
	requests, err := FetchRequests(ctx, s)
	if err != nil {
		return nil, s.fail(err, "Failed to fetch leave requests")
	}
	members, err := FetchTeam(ctx, s)
	if err != nil {
		return nil, s.fail(err, "Failed to fetch team members")
	}
	rows := reportRows(members, requests, rf)

	var body []byte
	switch def.ID {
	case ReportLeaveSummary:
		body, err = leaveSummaryXLSX(rows)
	case ReportDepartmentAnalysis:
		body, err = departmentAnalysisCSV(members, rows, rf)
	case ReportEmployeeHistory:
		body, err = employeeHistoryXLSX(rows)
	}
	if err != nil {
		zap.L().Error("生成报表失败", zap.String("report", def.ID), zap.Error(err))
		return nil, s.fail(err, "Failed to generate report")
	}

	file := &ReportFile{
		ReportID:    def.ID,
		Filename:    fmt.Sprintf("%s-%s.%s", def.ID, now.Format("20060102"), def.Format),
		ContentType: contentTypeXLSX,
		Body:        body,
		Rows:        len(rows),
	}
	if def.Format == "csv" {
		file.ContentType = contentTypeCSV
	}
	if archive != nil {
		run := &entity.ReportRun{
			ReportID:    def.ID,
			Format:      def.Format,
			Department:  rf.department,
			From:        f.From,
			Rows:        len(rows),
			GeneratedAt: now,
		}
		if u := s.Creds.User(ctx); u != nil {
			run.GeneratedBy = u.Email
		}
		// 归档失败不影响下载
		if err := archive.Record(ctx, run); err != nil {
			zap.L().Warn("记录报表生成失败", zap.String("report", def.ID), zap.Error(err))
		}
	}
	return file, nil
}

type statusCount struct {
	total, pending, approved, rejected int
	days                               float64
}

// xlsxHeader 写模式下设置加粗的表头，width 单位 CM
func xlsxHeader(sheet *xlsx.Sheet, titles []string, width []float64) {
	style := xlsx.NewStyle()

	font := xlsx.DefaultFont()
	font.Bold = true

	alignment := xlsx.DefaultAlignment()
	alignment.Vertical = "center"

	style.Font = *font
	style.Alignment = *alignment

	style.ApplyFont = true
	style.ApplyAlignment = true

	row := sheet.AddRow()
	row.SetHeightCM(1.0)
	for k, title := range titles {
		cell := row.AddCell()
		cell.Value = title
		cell.SetStyle(style)
		if k < len(width) && width[k] > 0.0 {
			sheet.SetColWidth(k, k, width[k]*10)
		}
	}
}

// leaveSummaryXLSX 每个部门一行，按状态统计
func leaveSummaryXLSX(rows []reportRow) ([]byte, error) {
	counts := make(map[string]*statusCount)
	for _, r := range rows {
		c, ok := counts[r.Department]
		if !ok {
			c = &statusCount{}
			counts[r.Department] = c
		}
		c.total++
		c.days += r.NumberOfDays
		switch r.Status {
		case entity.StatusPending:
			c.pending++
		case entity.StatusApproved:
			c.approved++
		case entity.StatusRejected:
			c.rejected++
		}
	}
	depts := make([]string, 0, len(counts))
	for d := range counts {
		depts = append(depts, d)
	}
	sort.Strings(depts)

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Leave Summary")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	xlsxHeader(sheet, []string{"Department", "Total Requests", "Pending", "Approved", "Rejected", "Total Days"},
		[]float64{2.0, 1.2, 1.0, 1.0, 1.0, 1.0})
	for _, d := range depts {
		c := counts[d]
		row := sheet.AddRow()
		row.SetHeightCM(0.8)
		row.AddCell().Value = d
		row.AddCell().SetInt(c.total)
		row.AddCell().SetInt(c.pending)
		row.AddCell().SetInt(c.approved)
		row.AddCell().SetInt(c.rejected)
		row.AddCell().SetFloat(c.days)
	}
	var buf bytes.Buffer
	if err = file.Write(&buf); err != nil {
		return nil, errors.WithStack(err)
	}
	return buf.Bytes(), nil
}

// departmentAnalysisCSV 部门人数、休假人数、待审批数以及按状态的请假统计
func departmentAnalysisCSV(members []entity.TeamMember, rows []reportRow, rf reportFilter) ([]byte, error) {
	var pending []entity.LeaveRequest
	byDept := make(map[string]*statusCount)
	for _, r := range rows {
		c, ok := byDept[r.Department]
		if !ok {
			c = &statusCount{}
			byDept[r.Department] = c
		}
		c.total++
		c.days += r.NumberOfDays
		switch r.Status {
		case entity.StatusPending:
			c.pending++
			pending = append(pending, r.LeaveRequest)
		case entity.StatusApproved:
			c.approved++
		case entity.StatusRejected:
			c.rejected++
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Department", "Employees", "On Leave", "Pending Requests", "Total Requests", "Approved", "Rejected", "Total Days"})
	for _, sum := range Summarize(members, pending) {
		if rf.department != "" && !strings.EqualFold(rf.department, sum.Department) {
			continue
		}
		c := byDept[sum.Department]
		if c == nil {
			c = &statusCount{}
		}
		_ = w.Write([]string{
			csvText(sum.Department),
			strconv.Itoa(sum.TotalEmployees),
			strconv.Itoa(sum.OnLeave),
			strconv.Itoa(sum.PendingRequests),
			strconv.Itoa(c.total),
			strconv.Itoa(c.approved),
			strconv.Itoa(c.rejected),
			strconv.FormatFloat(c.days, 'f', -1, 64),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.WithStack(err)
	}
	return buf.Bytes(), nil
}

// csvText 以 = + - @ 开头的文本在表格软件里会被当成公式，前面补一个单引号
func csvText(s string) string {
	if s != "" && strings.ContainsRune("=+-@", rune(s[0])) {
		return "'" + s
	}
	return s
}

var historyHeader = []interface{}{
	"Employee", "Email", "Department", "Leave Type", "Start Date", "End Date", "Days", "Status", "Reason", "Submitted",
}

// employeeHistoryXLSX 每条请假记录一行
func employeeHistoryXLSX(rows []reportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			zap.L().Warn("关闭excel文件失败", zap.Error(err))
		}
	}()
	const sheet = "Leave History"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := f.SetSheetRow(sheet, "A1", &historyHeader); err != nil {
		return nil, errors.WithStack(err)
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	last, err := excelize.CoordinatesToCellName(len(historyHeader), 1)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err = f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return nil, errors.WithStack(err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		values := []interface{}{
			r.Employee,
			r.Email,
			r.Department,
			r.LeaveType.Name,
			r.StartDate.Day(),
			r.EndDate.Day(),
			r.NumberOfDays,
			r.Status,
			r.Reason,
			r.CreatedAt.Day(),
		}
		if err = f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, errors.WithStack(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return buf.Bytes(), nil
}
