// Package lock предоставляет распределённые блокировки для координации
// нескольких экземпляров планировщика.
//
// Захват всегда неблокирующий: если блокировка занята, TryLock сразу
// возвращает acquired=false, и вызывающий пропускает работу — её выполняет
// другой экземпляр.
//
// Реализации:
//   - memory.go   — в пределах процесса (тесты, один экземпляр)
//   - postgres.go — pg_try_advisory_lock на выделенном соединении
//   - redis.go    — SET NX PX с токеном владельца
package lock
