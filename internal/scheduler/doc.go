// Package scheduler выполняет периодические задачи сервера по cron-расписанию.
//
// Расписание задаётся cron-выражением из пяти полей или дескриптором
// (@every 30s, @hourly). Сервер регистрирует здесь проход reaper'а.
//
// Использование:
//
//	sched := scheduler.New(scheduler.Config{Logger: logger})
//	if err := sched.Add("reaper", "@every 30s", func(ctx context.Context) error {
//	    _, err := reaper.Sweep(ctx)
//	    return err
//	}); err != nil {
//	    return err
//	}
//	go sched.Run(ctx)
package scheduler
