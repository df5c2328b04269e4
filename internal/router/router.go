package router

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/zjzjzjzj1874/jinzhangben/internal/classifier"
	"github.com/zjzjzjzj1874/jinzhangben/internal/config"
	"github.com/zjzjzjzj1874/jinzhangben/internal/handler"
	"github.com/zjzjzjzj1874/jinzhangben/internal/middleware"
	"github.com/zjzjzjzj1874/jinzhangben/internal/store"
)

// SetupRouter 装配 Gin 引擎和全部 API 路由
func SetupRouter(cfg *config.Config, db *gorm.DB, rules *classifier.RuleSet, log zerolog.Logger) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(log), gin.Recovery())

	billStore := store.New(db, log)

	// ====== API ======
	api := r.Group("/api")

	billHandler := handler.NewBillHandler(billStore, rules, cfg.App.PageSize, log)
	api.POST("/bills", billHandler.CreateBill)
	api.GET("/bills", billHandler.ListBills)
	api.GET("/bills/year", billHandler.ListByYear)
	api.GET("/stats/period", billHandler.GetPeriodSummary)
	api.GET("/stats/monthly", billHandler.GetMonthlyStats)
	api.GET("/stats/category", billHandler.GetCategoryStats)

	importHandler := handler.NewImportHandler(billStore, rules, log)
	api.POST("/import/alipay", importHandler.ImportAlipay)
	api.POST("/import/wechat", importHandler.ImportWechat)

	exportHandler := handler.NewExportHandler(billStore)
	api.GET("/export/csv", exportHandler.ExportCSV)
	api.GET("/export/xlsx", exportHandler.ExportXLSX)

	backupHandler := handler.NewBackupHandler(db, billStore, cfg.Backup.Dir, cfg.Backup.EncryptionKey, log)
	api.POST("/backups", backupHandler.CreateBackup)
	api.GET("/backups", backupHandler.ListBackups)
	api.GET("/backups/:id/download", backupHandler.DownloadBackup)
	api.POST("/backups/:id/restore", backupHandler.RestoreBackup)
	api.DELETE("/backups/:id", backupHandler.DeleteBackup)

	return r
}
