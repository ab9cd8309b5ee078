package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/fieldflow/timelog_service/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// a single connection keeps the in-memory database alive and the
	// foreign_keys pragma in force for every statement
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Order{},
		&domain.Team{},
		&domain.TeamMember{},
		&domain.TimeLog{},
		&domain.AuditLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedWorkerAndOrder(t *testing.T, db *gorm.DB) (*domain.User, *domain.Order) {
	t.Helper()

	worker := &domain.User{Email: "worker@example.com", Name: "Worker", Role: domain.RoleWorker, OrganisationID: 1, HourlyRate: 650}
	if err := db.Create(worker).Error; err != nil {
		t.Fatalf("seed worker: %v", err)
	}
	order := &domain.Order{OrganisationID: 1, Title: "Roof repair", Status: "open"}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return worker, order
}

func TestCreateTimeLog_DerivesTotalAmount(t *testing.T) {
	db := setupDB(t)
	worker, order := seedWorkerAndOrder(t, db)
	repo := NewTimeLogRepository(db)

	start := time.Date(2026, 8, 17, 9, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 17, 17, 0, 0, 0, time.UTC)

	entry, err := repo.CreateTimeLog(&domain.TimeLog{
		OrderID:       order.ID,
		UserID:        worker.ID,
		StartTime:     start,
		EndTime:       &end,
		BreakDuration: 60,
		HourlyRate:    650,
		TotalAmount:   12345, // must be ignored
	})
	if err != nil {
		t.Fatalf("CreateTimeLog() error = %v", err)
	}
	if entry.TotalAmount != 4550 {
		t.Errorf("TotalAmount = %v, want 4550", entry.TotalAmount)
	}

	var stored domain.TimeLog
	if err := db.First(&stored, entry.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.TotalAmount != 4550 {
		t.Errorf("stored TotalAmount = %v, want 4550", stored.TotalAmount)
	}
}

func TestCreateTimeLog_OpenSessionIsZero(t *testing.T) {
	db := setupDB(t)
	worker, order := seedWorkerAndOrder(t, db)
	repo := NewTimeLogRepository(db)

	entry, err := repo.CreateTimeLog(&domain.TimeLog{
		OrderID:    order.ID,
		UserID:     worker.ID,
		StartTime:  time.Date(2026, 8, 17, 9, 0, 0, 0, time.UTC),
		HourlyRate: 650,
	})
	if err != nil {
		t.Fatalf("CreateTimeLog() error = %v", err)
	}
	if entry.TotalAmount != 0 {
		t.Errorf("TotalAmount = %v, want 0 while session is open", entry.TotalAmount)
	}
}

func TestSaveTimeLog_RecomputesAndRefreshesUpdatedAt(t *testing.T) {
	db := setupDB(t)
	worker, order := seedWorkerAndOrder(t, db)
	repo := NewTimeLogRepository(db)

	start := time.Date(2026, 8, 17, 9, 0, 0, 0, time.UTC)
	entry, err := repo.CreateTimeLog(&domain.TimeLog{
		OrderID:    order.ID,
		UserID:     worker.ID,
		StartTime:  start,
		HourlyRate: 650,
	})
	if err != nil {
		t.Fatalf("CreateTimeLog() error = %v", err)
	}
	firstWrite := entry.UpdatedAt

	time.Sleep(10 * time.Millisecond)

	end := start.Add(8 * time.Hour)
	entry.EndTime = &end
	entry.BreakDuration = 60
	if err := repo.SaveTimeLog(entry); err != nil {
		t.Fatalf("SaveTimeLog() error = %v", err)
	}

	if entry.TotalAmount != 4550 {
		t.Errorf("TotalAmount = %v, want 4550 after close", entry.TotalAmount)
	}
	if !entry.UpdatedAt.After(firstWrite) {
		t.Errorf("UpdatedAt not refreshed: %v <= %v", entry.UpdatedAt, firstWrite)
	}

	// changing the rate recomputes again
	entry.HourlyRate = 700
	if err := repo.SaveTimeLog(entry); err != nil {
		t.Fatalf("SaveTimeLog() error = %v", err)
	}
	if entry.TotalAmount != 4900 {
		t.Errorf("TotalAmount = %v, want 4900 after rate change", entry.TotalAmount)
	}
}

func TestFindTimeLogById_NotFound(t *testing.T) {
	db := setupDB(t)
	repo := NewTimeLogRepository(db)

	if _, err := repo.FindTimeLogById(12345); !errors.Is(err, ErrTimeLogNotFound) {
		t.Errorf("FindTimeLogById() error = %v, want ErrTimeLogNotFound", err)
	}
}

func TestDeleteOrder_CascadesTimeLogs(t *testing.T) {
	db := setupDB(t)
	worker, order := seedWorkerAndOrder(t, db)
	repo := NewTimeLogRepository(db)

	if _, err := repo.CreateTimeLog(&domain.TimeLog{
		OrderID:    order.ID,
		UserID:     worker.ID,
		StartTime:  time.Now().UTC(),
		HourlyRate: 650,
	}); err != nil {
		t.Fatalf("CreateTimeLog() error = %v", err)
	}

	if err := NewOrderRepository(db).DeleteOrder(order.ID); err != nil {
		t.Fatalf("DeleteOrder() error = %v", err)
	}

	var count int64
	if err := db.Model(&domain.TimeLog{}).Where("order_id = ?", order.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("time logs after order delete = %d, want 0", count)
	}
}

func TestDeleteUser_CascadesTimeLogs(t *testing.T) {
	db := setupDB(t)
	worker, order := seedWorkerAndOrder(t, db)
	repo := NewTimeLogRepository(db)

	if _, err := repo.CreateTimeLog(&domain.TimeLog{
		OrderID:    order.ID,
		UserID:     worker.ID,
		StartTime:  time.Now().UTC(),
		HourlyRate: 650,
	}); err != nil {
		t.Fatalf("CreateTimeLog() error = %v", err)
	}

	if err := NewUserRepository(db).DeleteUser(worker.ID); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}

	var count int64
	if err := db.Model(&domain.TimeLog{}).Where("user_id = ?", worker.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("time logs after worker delete = %d, want 0", count)
	}
}

func TestListPendingByLeader(t *testing.T) {
	db := setupDB(t)
	repo := NewTimeLogRepository(db)
	teamRepo := NewTeamRepository(db)

	leader := &domain.User{Email: "leader@example.com", Name: "Leader", Role: domain.RoleWorker, OrganisationID: 1}
	member := &domain.User{Email: "member@example.com", Name: "Member", Role: domain.RoleWorker, OrganisationID: 1}
	former := &domain.User{Email: "former@example.com", Name: "Former", Role: domain.RoleWorker, OrganisationID: 1}
	for _, u := range []*domain.User{leader, member, former} {
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	order := &domain.Order{OrganisationID: 1, Title: "Fence install"}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}

	team, err := teamRepo.CreateTeam(&domain.Team{OrganisationID: 1, Name: "North crew", LeaderID: leader.ID})
	if err != nil {
		t.Fatalf("CreateTeam() error = %v", err)
	}
	if err := teamRepo.AddMember(&domain.TeamMember{TeamID: team.ID, UserID: member.ID, IsActive: true}); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}
	if err := db.Create(&domain.TeamMember{TeamID: team.ID, UserID: former.ID, IsActive: false}).Error; err != nil {
		t.Fatalf("seed inactive member: %v", err)
	}

	for _, u := range []*domain.User{member, former} {
		if _, err := repo.CreateTimeLog(&domain.TimeLog{
			OrderID:    order.ID,
			UserID:     u.ID,
			StartTime:  time.Now().UTC(),
			HourlyRate: 650,
		}); err != nil {
			t.Fatalf("CreateTimeLog() error = %v", err)
		}
	}

	pending, err := repo.ListPendingByLeader(leader.ID)
	if err != nil {
		t.Fatalf("ListPendingByLeader() error = %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %d entries, want 1 (inactive member excluded)", len(pending))
	}
	if pending[0].UserID != member.ID {
		t.Errorf("pending[0].UserID = %d, want %d", pending[0].UserID, member.ID)
	}
}

func TestListPendingByOrganisation(t *testing.T) {
	db := setupDB(t)
	repo := NewTimeLogRepository(db)

	inOrg := &domain.User{Email: "in@example.com", Name: "In", Role: domain.RoleWorker, OrganisationID: 1}
	outOrg := &domain.User{Email: "out@example.com", Name: "Out", Role: domain.RoleWorker, OrganisationID: 2}
	for _, u := range []*domain.User{inOrg, outOrg} {
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	order := &domain.Order{OrganisationID: 1, Title: "Gutter cleaning"}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}

	approvedEnd := time.Now().UTC()
	entries := []*domain.TimeLog{
		{OrderID: order.ID, UserID: inOrg.ID, StartTime: time.Now().UTC(), HourlyRate: 650},
		{OrderID: order.ID, UserID: inOrg.ID, StartTime: time.Now().UTC(), EndTime: &approvedEnd, HourlyRate: 650, IsApproved: true},
		{OrderID: order.ID, UserID: outOrg.ID, StartTime: time.Now().UTC(), HourlyRate: 650},
	}
	for _, e := range entries {
		if _, err := repo.CreateTimeLog(e); err != nil {
			t.Fatalf("CreateTimeLog() error = %v", err)
		}
	}

	pending, err := repo.ListPendingByOrganisation(1)
	if err != nil {
		t.Fatalf("ListPendingByOrganisation() error = %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %d entries, want 1", len(pending))
	}
	if pending[0].UserID != inOrg.ID || pending[0].IsApproved {
		t.Errorf("unexpected pending entry: %+v", pending[0])
	}
}

func TestListByUser_TimeWindow(t *testing.T) {
	db := setupDB(t)
	worker, order := seedWorkerAndOrder(t, db)
	repo := NewTimeLogRepository(db)

	base := time.Date(2026, 8, 10, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if _, err := repo.CreateTimeLog(&domain.TimeLog{
			OrderID:    order.ID,
			UserID:     worker.ID,
			StartTime:  base.AddDate(0, 0, i),
			HourlyRate: 650,
		}); err != nil {
			t.Fatalf("CreateTimeLog() error = %v", err)
		}
	}

	from := base.AddDate(0, 0, 1)
	to := base.AddDate(0, 0, 2)
	entries, err := repo.ListByUser(worker.ID, &from, &to)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1 in [from, to)", len(entries))
	}
	if !entries[0].StartTime.Equal(from) {
		t.Errorf("StartTime = %v, want %v", entries[0].StartTime, from)
	}
}
