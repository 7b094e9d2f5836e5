// Package worker выполняет job, полученные от сервера Conveyor.
//
// # Обзор
//
// Worker — процесс с одним кооперативным циклом. Он держит три соединения
// с сервером: основное (heartbeat и регистрация), fetch (блокирующий
// BRPOPLPUSH) и job (команды единицы выполнения). Одновременно
// выполняется не больше одного job.
//
//	cfg, err := worker.LoadConfig(os.Getenv)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	w, err := worker.New(cfg, worker.Deps{
//	    Dial:     worker.RespDialer(resp.ClientConfig{Addr: cfg.Addr, SessionKey: cfg.SessionKey}),
//	    Executor: executor.New(executor.Config{Sandbox: sb}),
//	    Logger:   logger,
//	})
//
//	if err := w.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Цикл
//
// На каждой итерации сначала проверяется таймер heartbeat, затем:
//
//  1. Если воркер свободен, запускается fetch из очереди своих тегов
//     (очереди перебираются по кругу, ожидание не дольше FetchTimeout)
//  2. Полученный job проверяется: отсутствующий или не ready убирается
//     из processing-списка
//  3. Единица выполнения: JOB.START, stdout upstream-job на stdin,
//     запуск через executor, JOB.RESULT, LREM из processing
//  4. Завершение единицы (в том числе паника) забирается через канал
//
// # Остановка
//
// Отмена ctx или ответ +DRAIN на heartbeat останавливают приём новых job.
// Job в работе дожидается завершения, но не дольше ShutdownTimeout
// (0 — без ограничения). По истечении таймаута job прерывается, а его id
// остаётся в processing: его подберёт reaper на сервере.
//
// Ошибка heartbeat или fetch завершает Run с ErrHeartbeat или ErrFetch.
//
// # Конфигурация
//
// LoadConfig читает YAML-файл из CONVEYOR_WORKER_CONFIG, затем переменные
// CONVEYOR_ADDR, CONVEYOR_SESSION_KEY, CONVEYOR_WORKER_ID,
// CONVEYOR_WORKER_NAME, CONVEYOR_WORKER_TOOLS, CONVEYOR_WORKER_TAGS,
// CONVEYOR_HEARTBEAT_SECS, CONVEYOR_FETCH_TIMEOUT_SECS,
// CONVEYOR_SHUTDOWN_TIMEOUT_SECS и CONVEYOR_SANDBOX.
package worker
