package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/zjzjzjzj1874/jinzhangben/internal/models"
	"github.com/zjzjzjzj1874/jinzhangben/internal/store"
	"github.com/zjzjzjzj1874/jinzhangben/internal/util"
)

// BackupHandler 负责备份相关接口
type BackupHandler struct {
	DB         *gorm.DB
	Store      *store.BillStore
	BackupDir  string
	EncryptKey string
	Log        zerolog.Logger
}

func NewBackupHandler(db *gorm.DB, s *store.BillStore, backupDir, encryptKey string, log zerolog.Logger) *BackupHandler {
	return &BackupHandler{DB: db, Store: s, BackupDir: backupDir, EncryptKey: encryptKey, Log: log}
}

// backupData 备份文件的内容结构
type backupData struct {
	Created time.Time     `json:"created"`
	Bills   []models.Bill `json:"bills"`
}

// CreateBackup 把全部账单快照成一个加密备份文件
func (h *BackupHandler) CreateBackup(c *gin.Context) {
	bills, err := h.Store.All()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询数据失败")
		return
	}

	data := backupData{
		Created: time.Now(),
		Bills:   bills,
	}
	raw, err := json.MarshalIndent(&data, "", "  ")
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "序列化失败")
		return
	}

	enc, err := util.EncryptAES(h.EncryptKey, raw)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "加密失败")
		return
	}

	if err := os.MkdirAll(h.BackupDir, 0o755); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "创建备份目录失败")
		return
	}

	// 使用 uuid 作为文件名，避免覆盖
	fileName := fmt.Sprintf("backup-%s.bin", uuid.New().String())
	filePath := filepath.Join(h.BackupDir, fileName)

	if err := os.WriteFile(filePath, enc, 0o600); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "写入备份文件失败")
		return
	}

	info, _ := os.Stat(filePath)

	backup := models.Backup{
		FileName:  fileName,
		FilePath:  filePath,
		Size:      info.Size(),
		BillCount: len(bills),
	}
	if err := h.DB.Create(&backup).Error; err != nil {
		_ = os.Remove(filePath)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "保存备份记录失败")
		return
	}

	h.Log.Info().
		Str("file", fileName).
		Int("bills", len(bills)).
		Msg("备份已生成")

	util.Success(c, util.Response{
		"backup": gin.H{
			"id":         backup.ID,
			"file_name":  backup.FileName,
			"size":       backup.Size,
			"bill_count": backup.BillCount,
			"created_at": backup.CreatedAt,
		},
	})
}

// ListBackups 列出已有的备份
func (h *BackupHandler) ListBackups(c *gin.Context) {
	var list []models.Backup
	if err := h.DB.Order("created_at DESC").Find(&list).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询备份失败")
		return
	}

	items := make([]gin.H, 0, len(list))
	for i := range list {
		b := &list[i]
		items = append(items, gin.H{
			"id":         b.ID,
			"file_name":  b.FileName,
			"size":       b.Size,
			"bill_count": b.BillCount,
			"created_at": b.CreatedAt,
		})
	}

	util.Success(c, util.Response{
		"items": items,
	})
}

// findBackup 按路径参数 id 取备份记录
func (h *BackupHandler) findBackup(c *gin.Context) (*models.Backup, bool) {
	id := c.Param("id")

	var backup models.Backup
	if err := h.DB.Where("id = ?", id).First(&backup).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "备份不存在")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询备份失败")
		}
		return nil, false
	}
	return &backup, true
}

// DownloadBackup 下载指定备份文件
func (h *BackupHandler) DownloadBackup(c *gin.Context) {
	backup, ok := h.findBackup(c)
	if !ok {
		return
	}

	// 直接下发密文，不在服务端解密
	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", backup.FileName))
	c.File(backup.FilePath)
}

// DeleteBackup 删除备份记录及对应文件
func (h *BackupHandler) DeleteBackup(c *gin.Context) {
	backup, ok := h.findBackup(c)
	if !ok {
		return
	}

	// 先删文件，再删记录
	_ = os.Remove(backup.FilePath)
	if err := h.DB.Delete(backup).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "删除备份记录失败")
		return
	}

	util.Success(c, util.Response{
		"message": "删除成功",
	})
}

// RestoreBackup 从指定备份文件恢复账单数据。
// 整体替换：事务里先清空 bills 再逐条写回，恢复的账单重新分配主键。
func (h *BackupHandler) RestoreBackup(c *gin.Context) {
	backup, ok := h.findBackup(c)
	if !ok {
		return
	}

	enc, err := os.ReadFile(backup.FilePath)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "读取备份文件失败")
		return
	}

	raw, err := util.DecryptAES(h.EncryptKey, enc)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "解密备份文件失败")
		return
	}

	var data backupData
	if err := json.Unmarshal(raw, &data); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "解析备份数据失败")
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Bill{}).Error; err != nil {
			return err
		}
		for i := range data.Bills {
			b := data.Bills[i]
			b.ID = 0 // 让数据库重新分配主键
			if err := tx.Create(&b).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		h.Log.Error().Err(err).Str("file", backup.FileName).Msg("备份恢复失败")
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "恢复失败")
		return
	}

	h.Log.Info().
		Str("file", backup.FileName).
		Int("bills", len(data.Bills)).
		Msg("备份已恢复")

	util.Success(c, util.Response{
		"message":     "恢复成功",
		"bills_count": len(data.Bills),
	})
}
