// Package poller реализует периодический опрос партиций с координацией
// между экземплярами.
//
// Poller ничего не знает о предметной области: он перебирает партиции
// Monitor'а, для каждой захватывает распределённую блокировку, вызывает
// GenerateDelta и, если дельта не пуста, CommitDelta.
//
// Состояния:
//
//	Suspended (начальное) ⇄ Active
//
// Переходы приходят сообщениями domain.StatusChange (UP → Active, иначе
// Suspended). Тик, начатый до перехода в Suspended, завершается целиком.
//
// Использование:
//
//	p := poller.New(poller.Config[domain.PollingDelta]{
//	    Monitor:  monitor,
//	    Locker:   locker,                  // опционально
//	    Schedule: cron.Every(time.Minute),
//	    Logger:   logger,
//	})
//
//	go p.Run(ctx, statuses)
//
// Тики не перекрываются: следующий тик планируется после завершения
// предыдущего. Ошибки одной партиции не блокируют остальные.
package poller
