package day

import "github.com/goodgood52099-bit/XFWH-BOT/pkg/dbmetrics"

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor
