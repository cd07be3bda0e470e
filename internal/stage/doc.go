// Package stage реализует wait-задачу pipeline-стадии dry-run.
//
// WaitTask — retryable задача без собственного состояния. Хост вызывает её
// на каждом своём тике:
//
//	startTime не задан            → RUNNING, backoff = BackoffPeriod
//	now <  startTime + waitTime   → RUNNING, backoff = deadline - now
//	now >= startTime + waitTime   → SUCCEEDED
//
// Следующая проверка планируется ровно на момент истечения ожидания,
// без частого опроса. Статус и backoff вычисляются по одному снимку
// времени (Evaluate), поэтому они не могут противоречить друг другу.
//
// Runner — простой хост: выставляет startTime, крутит цикл
// Evaluate → sleep(backoff) и прерывает задачу по Timeout.
package stage
