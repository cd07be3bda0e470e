// Package app собирает компоненты планировщика по конфигурации.
//
// Build создаёт хранилище, блокировки, транспорт событий, Monitor и Poller
// для выбранных backend'ов и возвращает Runtime. Runtime используют
// dryrun-scheduler и dryrunctl. Close освобождает соединения в обратном
// порядке.
package app
