package reconcile

import (
	"github.com/umarmf343/vea-2025-sub005/internal/models"
	"github.com/umarmf343/vea-2025-sub005/internal/record"
)

// SubjectViews converts normalized academic records into subject entries.
func SubjectViews(records []record.Record) []models.SubjectRecord {
	views := make([]models.SubjectRecord, 0, len(records))
	for _, rec := range records {
		view := models.SubjectRecord{
			ID:      rec.ID(),
			Subject: record.SubjectName.First(rec),
			Teacher: record.SubjectTeacher.First(rec),
			Grade:   record.SubjectGrade.First(rec),
		}
		if score, ok := record.SubjectScore.Number(rec); ok {
			s := score
			view.Score = &s
		}
		views = append(views, view)
	}
	return views
}

// TimetableViews converts normalized timetable records into slots.
func TimetableViews(records []record.Record) []models.TimetableSlot {
	views := make([]models.TimetableSlot, 0, len(records))
	for _, rec := range records {
		views = append(views, models.TimetableSlot{
			ID:       rec.ID(),
			Day:      record.SlotDay.First(rec),
			Time:     record.SlotTime.First(rec),
			Subject:  record.SlotSubject.First(rec),
			Teacher:  record.SlotTeacher.First(rec),
			Location: record.SlotLocation.First(rec),
		})
	}
	return views
}

// LoanViews converts normalized library records into loan entries.
func LoanViews(records []record.Record) []models.LibraryLoan {
	views := make([]models.LibraryLoan, 0, len(records))
	for _, rec := range records {
		view := models.LibraryLoan{
			ID:     rec.ID(),
			Title:  record.LoanTitle.First(rec),
			Author: record.LoanAuthor.First(rec),
			Status: record.LoanStatus.First(rec),
		}
		if borrowed, ok := record.LoanBorrowed.Time(rec); ok {
			b := borrowed
			view.BorrowedOn = &b
		}
		if due, ok := record.LoanDue.Time(rec); ok {
			d := due
			view.DueDate = &d
		}
		views = append(views, view)
	}
	return views
}
