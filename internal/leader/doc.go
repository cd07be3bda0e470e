// Package leader выдаёт сигналы смены статуса экземпляра.
//
// Poller активен только на экземпляре со статусом UP. Источники сигнала:
//   - Static   — один раз выдаёт UP (единственный экземпляр)
//   - Advisory — лидерство через session-level pg_try_advisory_lock:
//     UP, пока соединение держит блокировку, OUT_OF_SERVICE при её потере
//
// Сигналы — значения domain.StatusChange в канале.
package leader
