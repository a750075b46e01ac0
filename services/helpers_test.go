package services

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/cohee-app/database"
	"github.com/yeremiapane/cohee-app/models"
	"github.com/yeremiapane/cohee-app/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var errInjected = errors.New("injected store failure")

// setupTestDB membuka SQLite in-memory dengan nama unik per test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	utils.SilenceLoggers()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func seedTable(t *testing.T, db *gorm.DB, number string, active bool) *models.Table {
	t.Helper()
	table := &models.Table{TableNumber: number, Capacity: 4, IsActive: active}
	require.NoError(t, db.Create(table).Error)
	return table
}

func seedUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: strings.ToLower(name) + "@cohee.test", Password: "x"}
	require.NoError(t, db.Create(user).Error)
	return user
}

// failWrites membuat create/update ke tabel tertentu gagal.
func failWrites(t *testing.T, db *gorm.DB, op string, table string) {
	t.Helper()
	fail := func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			tx.AddError(errInjected)
		}
	}
	name := fmt.Sprintf("test:fail_%s_%s", op, table)

	var err error
	switch op {
	case "create":
		err = db.Callback().Create().Before("gorm:create").Register(name, fail)
	case "update":
		err = db.Callback().Update().Before("gorm:update").Register(name, fail)
	case "query":
		err = db.Callback().Query().Before("gorm:query").Register(name, fail)
	default:
		t.Fatalf("unknown op %q", op)
	}
	require.NoError(t, err)
}

// countQueries menghitung seluruh query/create/update yang sampai ke store.
func countQueries(t *testing.T, db *gorm.DB) *int64 {
	t.Helper()
	var n int64
	inc := func(*gorm.DB) { atomic.AddInt64(&n, 1) }
	require.NoError(t, db.Callback().Query().Before("gorm:query").Register("test:count_query", inc))
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:count_create", inc))
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("test:count_update", inc))
	return &n
}

type testStack struct {
	db        *gorm.DB
	directory *TableDirectory
	sessions  *TableSessionManager
	orders    *OrderService
	toasts    *ToastBoard
}

func newTestStack(t *testing.T) *testStack {
	db := setupTestDB(t)
	return &testStack{
		db:        db,
		directory: NewTableDirectory(db, DirectoryOptions{}),
		sessions:  NewTableSessionManager(db, nil),
		orders:    NewOrderService(db),
		toasts:    NewToastBoard(),
	}
}

func (s *testStack) app(policy PersistFailurePolicy) *AppContext {
	return NewAppContext(AppContextDeps{
		Directory: s.directory,
		Sessions:  s.sessions,
		Orders:    s.orders,
		Notifier:  s.toasts,
		Policy:    policy,
	})
}

func menuItem(id string, price float64) models.MenuItem {
	return models.MenuItem{ID: id, Name: "Item " + id, Price: price, Category: "Coffee", Available: true}
}

func product(id string, price float64) models.Product {
	return models.Product{ID: id, Name: "Product " + id, Price: price, Category: models.ProductBeans, InStock: true}
}
