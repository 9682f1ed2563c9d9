package app

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
	"github.com/shirou/gopsutil/process"
	"go.uber.org/zap"

	"github.com/talkincode/toughpos/pkg/metrics"
)

const (
	JobBackup   = "backup"
	JobLowStock = "low_stock"
	JobMonitor  = "monitor"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// backupKeep is how many nightly copies stay in the backup dir
const backupKeep = 7

// registerJobs makes the jobs runnable by name, with or without cron
func (a *Application) registerJobs() {
	a.jobs.add(JobMonitor, "@every 30s", func() error {
		a.SchedSystemMonitorTask()
		a.SchedProcessMonitorTask()
		return nil
	})
	a.jobs.add(JobLowStock, "@every 30m", a.SchedLowStockTask)
	a.jobs.add(JobBackup, "0 0 3 * * *", a.SchedBackupTask)
}

func (a *Application) initJob() {
	a.sched = cron.New(cron.WithLocation(a.loc), cron.WithParser(cronParser))
	for _, job := range a.jobs.list() {
		name := job.Name
		if _, err := a.sched.AddFunc(job.Spec, func() { _ = a.jobs.run(name) }); err != nil {
			zap.S().Errorf("init job %s error %s", name, err.Error())
		}
	}
	a.sched.Start()
}

// SchedSystemMonitorTask system monitor
func (a *Application) SchedSystemMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	// Collect CPU usage
	_cpuuse, err := cpu.Percent(0, false)
	if err == nil && len(_cpuuse) > 0 {
		metrics.SetGauge("system_cpuuse", int64(_cpuuse[0]*100)) // Store as percentage * 100
	}

	// Collect memory usage
	_meminfo, err := mem.VirtualMemory()
	if err == nil {
		metrics.SetGauge("system_memuse", int64(_meminfo.Used/1024/1024)) //nolint:gosec // G115: memory MB value fits in int64
	}
}

// SchedProcessMonitorTask app process monitor
func (a *Application) SchedProcessMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	p, err := process.NewProcess(int32(os.Getpid())) //nolint:gosec // G115: PID is always within int32 range
	if err != nil {
		return
	}

	cpuuse, err := p.CPUPercent()
	if err == nil {
		metrics.SetGauge("toughpos_cpuuse", int64(cpuuse*100))
	}

	meminfo, err := p.MemoryInfo()
	if err == nil {
		metrics.SetGauge("toughpos_memuse", int64(meminfo.RSS/1024/1024)) //nolint:gosec // G115: memory MB value fits in int64
	}
}

// SchedLowStockTask logs the products at or under their threshold
func (a *Application) SchedLowStockTask() error {
	low := a.catalog.LowStock()
	metrics.SetGauge(metrics.LowStockProduct, int64(len(low)))
	if !a.settings.Get().EnableStockAlerts || len(low) == 0 {
		return nil
	}
	for _, p := range low {
		zap.L().Warn("low stock",
			zap.String("barcode", p.Barcode),
			zap.String("name", p.Name),
			zap.Int("stock", p.Stock),
			zap.Int("minStock", p.MinStock))
	}
	return nil
}

type backuper interface {
	Backup(dest string) error
}

// SchedBackupTask copies the bolt database into the backup dir and prunes
// old copies. Other backends have their own backup tooling.
func (a *Application) SchedBackupTask() error {
	b, ok := a.kv.(backuper)
	if !ok {
		zap.L().Debug("storage backend has no file backup, skipped")
		return nil
	}
	dir := a.appConfig.GetBackupDir()
	dest := path.Join(dir, fmt.Sprintf("toughpos-%s.db", time.Now().In(a.loc).Format("20060102-150405")))
	if err := b.Backup(dest); err != nil {
		return err
	}
	zap.L().Info("storage backup written", zap.String("file", dest))
	pruneBackups(dir, backupKeep)
	return nil
}

func pruneBackups(dir string, keep int) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && path.Ext(e.Name()) == ".db" {
			files = append(files, e.Name())
		}
	}
	// names carry a sortable timestamp and ReadDir returns them sorted
	for i := 0; i < len(files)-keep; i++ {
		if err := os.Remove(path.Join(dir, files[i])); err != nil {
			zap.L().Warn("backup prune failed", zap.String("file", files[i]), zap.Error(err))
		}
	}
}
