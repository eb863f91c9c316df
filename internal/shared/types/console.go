package types

// Logger é o subconjunto do console usado pelos casos de uso.
type Logger interface {
	LogInfo(format string, a ...interface{})
	LogWarning(format string, a ...interface{})
	LogError(format string, a ...interface{})
}

// ConsoleInterface define a interface para saída no console.
type ConsoleInterface interface {
	Logger

	Print(a ...interface{})
	Printf(format string, a ...interface{})
	Println(a ...interface{})

	LogSuccess(format string, a ...interface{})

	Status(message string) StatusHandle

	CreateTable() TableInterface
	DisplaySeriesBars(title string, currency string, points []BarPoint)
}

// StatusHandle é uma interface para atualizar uma mensagem de status.
type StatusHandle interface {
	Update(message string)
	Stop()
}

// TableInterface define a interface para criar e manipular tabelas.
type TableInterface interface {
	AddColumn(name string, options ...interface{})
	AddRow(cells ...interface{})
	Render() string
}

// BarPoint é uma barra do gráfico de custos: o rótulo do bucket e o seu custo.
type BarPoint struct {
	Label string  `json:"label"`
	Cost  float64 `json:"cost"`
}
