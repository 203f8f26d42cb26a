package mysql

import (
	"context"
	"time"

	"leave/model/entity"
	"leave/utils"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ReportArchive 报表生成记录
type ReportArchive struct {
	db *gorm.DB
}

func NewReportArchive(db *gorm.DB) *ReportArchive {
	return &ReportArchive{db: db}
}

// Record 记一次生成，ID 和时间为空时补上
func (a *ReportArchive) Record(ctx context.Context, run *entity.ReportRun) error {
	if run.ID == 0 {
		run.ID = utils.GenID()
	}
	if run.GeneratedAt.IsZero() {
		run.GeneratedAt = time.Now()
	}
	return errors.WithStack(a.db.WithContext(ctx).Create(run).Error)
}

// LastGenerated 每个报表最近一次生成时间，没生成过的不在结果里
func (a *ReportArchive) LastGenerated(ctx context.Context) (map[string]time.Time, error) {
	var ids []string
	err := a.db.WithContext(ctx).Model(&entity.ReportRun{}).Distinct("report_id").Pluck("report_id", &ids).Error
	if err != nil {
		return nil, errors.WithStack(err)
	}
	out := make(map[string]time.Time, len(ids))
	for _, id := range ids {
		run, err := a.Last(ctx, id)
		if err != nil {
			return nil, err
		}
		out[id] = run.GeneratedAt
	}
	return out, nil
}

// Last 某个报表最近一次生成记录
func (a *ReportArchive) Last(ctx context.Context, reportID string) (*entity.ReportRun, error) {
	var run entity.ReportRun
	err := a.db.WithContext(ctx).Where("report_id = ?", reportID).
		Order("generated_at desc").First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrorReportNotExist
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &run, nil
}

// Recent 最近 n 条生成记录
func (a *ReportArchive) Recent(ctx context.Context, n int) ([]entity.ReportRun, error) {
	var runs []entity.ReportRun
	err := a.db.WithContext(ctx).Order("generated_at desc").Limit(n).Find(&runs).Error
	return runs, errors.WithStack(err)
}
