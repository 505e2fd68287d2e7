package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"strategy_builder/internal/models"
	builder "strategy_builder/internal/modules/builder/service"
	catalog "strategy_builder/internal/modules/catalog/service"
	health "strategy_builder/internal/modules/health/service"
	saver "strategy_builder/internal/modules/saver/service"
	"strategy_builder/pkg/logger"
	"strategy_builder/pkg/metrics"
)

// Reply отправляет ответ в чат. Для /save вызывается позже, из горутины сохранения.
type Reply func(text string)

// Commander разбирает текстовые команды и применяет их к сессии чата.
// Транспорт (Telegram) только доставляет текст.
type Commander struct {
	catalog   *catalog.Catalog
	validator *builder.Validator
	saver     *saver.Saver
	store     saver.Store
	state     *health.State
	defaults  Defaults

	mu       sync.Mutex
	sessions map[int64]*Session

	saves sync.WaitGroup
}

func NewCommander(
	cat *catalog.Catalog,
	validator *builder.Validator,
	sv *saver.Saver,
	store saver.Store,
	state *health.State,
	defaults Defaults,
) *Commander {
	return &Commander{
		catalog:   cat,
		validator: validator,
		saver:     sv,
		store:     store,
		state:     state,
		defaults:  defaults,
		sessions:  make(map[int64]*Session),
	}
}

// Wait ждёт завершения запущенных сохранений.
func (c *Commander) Wait() {
	c.saves.Wait()
}

type handlerFunc func(ctx context.Context, chatID int64, args []string) (string, error)

func (c *Commander) handlers() map[string]handlerFunc {
	return map[string]handlerFunc{
		"start":      c.cmdHelp,
		"help":       c.cmdHelp,
		"new":        c.cmdNew,
		"group":      c.locked(c.cmdGroup),
		"rmgroup":    c.locked(c.cmdRmGroup),
		"add":        c.locked(c.cmdAdd),
		"rm":         c.locked(c.cmdRm),
		"logic":      c.locked(c.cmdLogic),
		"ind":        c.locked(c.cmdInd),
		"sig":        c.locked(c.cmdSig),
		"param":      c.locked(c.cmdParam),
		"unparam":    c.locked(c.cmdUnparam),
		"show":       c.locked(c.cmdShow),
		"json":       c.locked(c.cmdJSON),
		"indicators": c.cmdIndicators,
		"signals":    c.cmdSignals,
		"symbols":    c.cmdSymbols,
		"meta":       c.cmdMeta,
		"load":       c.cmdLoad,
	}
}

// Handle выполняет одну команду. Все команды, кроме /save, отвечают до возврата.
func (c *Commander) Handle(ctx context.Context, chatID int64, text string, reply Reply) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return
	}
	if !strings.HasPrefix(fields[0], "/") {
		reply("Команды начинаются с /, список: /help")
		return
	}
	cmd := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	args := fields[1:]

	if cmd == "save" {
		c.cmdSave(ctx, chatID, reply)
		return
	}

	h, ok := c.handlers()[cmd]
	if !ok {
		metrics.Commands.WithLabelValues("unknown", "error").Inc()
		reply("Неизвестная команда /" + cmd + ", список: /help")
		return
	}
	out, err := h(ctx, chatID, args)
	if err != nil {
		metrics.Commands.WithLabelValues(cmd, "error").Inc()
		logger.Debug("chat %d /%s: %v", chatID, cmd, err)
		reply("❗️ " + err.Error())
		return
	}
	metrics.Commands.WithLabelValues(cmd, "ok").Inc()
	reply(out)
}

// locked: команда над сессией чата под её мьютексом.
func (c *Commander) locked(fn func(s *Session, args []string) (string, error)) handlerFunc {
	return func(_ context.Context, chatID int64, args []string) (string, error) {
		s := c.session(chatID)
		s.mu.Lock()
		defer s.mu.Unlock()
		return fn(s, args)
	}
}

func wantArgs(args []string, n int, usage string) error {
	if len(args) < n {
		return fmt.Errorf("использование: %s", usage)
	}
	return nil
}

// sideGroupCond разбирает «<side> <g> <c>» в начале args.
func sideGroupCond(args []string, usage string) (models.Side, int, int, error) {
	if err := wantArgs(args, 3, usage); err != nil {
		return "", 0, 0, err
	}
	side, err := parseSide(args[0])
	if err != nil {
		return "", 0, 0, err
	}
	g, err := parseIndex("группа", args[1])
	if err != nil {
		return "", 0, 0, err
	}
	cond, err := parseIndex("условие", args[2])
	if err != nil {
		return "", 0, 0, err
	}
	return side, g, cond, nil
}

func (c *Commander) cmdHelp(context.Context, int64, []string) (string, error) {
	return helpText, nil
}

func (c *Commander) cmdNew(_ context.Context, chatID int64, _ []string) (string, error) {
	c.replaceSession(chatID, c.newSession())
	return "🆕 Новая стратегия. Добавь условие: /add buy", nil
}

func (c *Commander) cmdGroup(s *Session, args []string) (string, error) {
	if err := wantArgs(args, 1, "/group <buy|sell>"); err != nil {
		return "", err
	}
	side, err := parseSide(args[0])
	if err != nil {
		return "", err
	}
	g, err := s.builder.AddGroup(side)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("➕ %s группа %d", side, g+1), nil
}

func (c *Commander) cmdRmGroup(s *Session, args []string) (string, error) {
	if err := wantArgs(args, 2, "/rmgroup <side> <g>"); err != nil {
		return "", err
	}
	side, err := parseSide(args[0])
	if err != nil {
		return "", err
	}
	g, err := parseIndex("группа", args[1])
	if err != nil {
		return "", err
	}
	if err := s.builder.RemoveGroup(side, g); err != nil {
		return "", err
	}
	return fmt.Sprintf("🗑 %s группа %d удалена", side, g+1), nil
}

// cmdAdd без номера группы добавляет в последнюю, создавая её при необходимости.
func (c *Commander) cmdAdd(s *Session, args []string) (string, error) {
	if err := wantArgs(args, 1, "/add <side> [g]"); err != nil {
		return "", err
	}
	side, err := parseSide(args[0])
	if err != nil {
		return "", err
	}

	var g int
	if len(args) > 1 {
		if g, err = parseIndex("группа", args[1]); err != nil {
			return "", err
		}
	} else {
		groups, err := s.builder.Groups(side)
		if err != nil {
			return "", err
		}
		g = len(groups) - 1
		if g < 0 {
			if g, err = s.builder.AddGroup(side); err != nil {
				return "", err
			}
		}
	}

	idx, err := s.builder.AddCondition(side, g)
	if err != nil {
		return "", err
	}
	cond, err := s.builder.Condition(side, g, idx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("➕ %s группа %d условие %d: %s", side, g+1, idx+1, c.conditionLabel(cond)), nil
}

func (c *Commander) cmdRm(s *Session, args []string) (string, error) {
	side, g, idx, err := sideGroupCond(args, "/rm <side> <g> <c>")
	if err != nil {
		return "", err
	}
	if err := s.builder.RemoveCondition(side, g, idx); err != nil {
		return "", err
	}
	return fmt.Sprintf("🗑 %s группа %d условие %d удалено", side, g+1, idx+1), nil
}

func (c *Commander) cmdLogic(s *Session, args []string) (string, error) {
	if err := wantArgs(args, 3, "/logic <side> <g> <AND|OR>"); err != nil {
		return "", err
	}
	side, err := parseSide(args[0])
	if err != nil {
		return "", err
	}
	g, err := parseIndex("группа", args[1])
	if err != nil {
		return "", err
	}
	comb, err := models.ParseCombinator(args[2])
	if err != nil {
		return "", err
	}
	if err := s.builder.SetGroupCombinator(side, g, comb); err != nil {
		return "", err
	}
	return fmt.Sprintf("🔗 %s группа %d: %s", side, g+1, comb), nil
}

func (c *Commander) cmdInd(s *Session, args []string) (string, error) {
	usage := "/ind <side> <g> <c> <TYPE>"
	side, g, idx, err := sideGroupCond(args, usage)
	if err != nil {
		return "", err
	}
	if err := wantArgs(args, 4, usage); err != nil {
		return "", err
	}
	if err := s.builder.SetConditionIndicator(side, g, idx, strings.ToUpper(args[3])); err != nil {
		return "", err
	}
	cond, _ := s.builder.Condition(side, g, idx)
	return fmt.Sprintf("✏️ %s группа %d условие %d: %s", side, g+1, idx+1, c.conditionLabel(cond)), nil
}

func (c *Commander) cmdSig(s *Session, args []string) (string, error) {
	usage := "/sig <side> <g> <c> <SIGNAL>"
	side, g, idx, err := sideGroupCond(args, usage)
	if err != nil {
		return "", err
	}
	if err := wantArgs(args, 4, usage); err != nil {
		return "", err
	}
	if err := s.builder.SetConditionSignal(side, g, idx, strings.ToUpper(args[3])); err != nil {
		return "", err
	}
	cond, _ := s.builder.Condition(side, g, idx)
	return fmt.Sprintf("✏️ %s группа %d условие %d: %s", side, g+1, idx+1, c.conditionLabel(cond)), nil
}

func (c *Commander) cmdParam(s *Session, args []string) (string, error) {
	usage := "/param <side> <g> <c> <name> <value>"
	side, g, idx, err := sideGroupCond(args, usage)
	if err != nil {
		return "", err
	}
	if err := wantArgs(args, 5, usage); err != nil {
		return "", err
	}
	v, err := parseFloat(args[4])
	if err != nil {
		return "", err
	}
	if err := s.builder.SetConditionParam(side, g, idx, args[3], v); err != nil {
		return "", err
	}
	return fmt.Sprintf("✏️ %s группа %d условие %d: %s=%s", side, g+1, idx+1, args[3], f2(v)), nil
}

func (c *Commander) cmdUnparam(s *Session, args []string) (string, error) {
	usage := "/unparam <side> <g> <c> <name>"
	side, g, idx, err := sideGroupCond(args, usage)
	if err != nil {
		return "", err
	}
	if err := wantArgs(args, 4, usage); err != nil {
		return "", err
	}
	if err := s.builder.ClearConditionParam(side, g, idx, args[3]); err != nil {
		return "", err
	}
	return fmt.Sprintf("↩️ %s группа %d условие %d: %s по умолчанию", side, g+1, idx+1, args[3]), nil
}

func (c *Commander) cmdShow(s *Session, _ []string) (string, error) {
	return formatSession(s, c.catalog, c.validator), nil
}

func (c *Commander) cmdJSON(s *Session, _ []string) (string, error) {
	return builder.Serialize(builder.GenerateConfig(s.builder.State()))
}

func (c *Commander) cmdIndicators(_ context.Context, _ int64, args []string) (string, error) {
	if err := wantArgs(args, 1, "/indicators <buy|sell>"); err != nil {
		return "", err
	}
	side, err := parseSide(args[0])
	if err != nil {
		return "", err
	}
	return formatIndicators(side, c.catalog.ListIndicators(side)), nil
}

func (c *Commander) cmdSignals(_ context.Context, _ int64, args []string) (string, error) {
	if err := wantArgs(args, 2, "/signals <side> <TYPE>"); err != nil {
		return "", err
	}
	side, err := parseSide(args[0])
	if err != nil {
		return "", err
	}
	ind, ok := c.catalog.Indicator(strings.ToUpper(args[1]), side)
	if !ok {
		return "", fmt.Errorf("индикатора %s нет для %s", strings.ToUpper(args[1]), side)
	}
	return formatSignals(side, ind), nil
}

func (c *Commander) cmdSymbols(ctx context.Context, _ int64, _ []string) (string, error) {
	symbols, err := c.store.ListSymbols(ctx)
	if err != nil {
		return "", fmt.Errorf("не удалось получить инструменты: %w", err)
	}
	return formatSymbols(symbols), nil
}

func (c *Commander) cmdMeta(ctx context.Context, chatID int64, args []string) (string, error) {
	if err := wantArgs(args, 2, "/meta <name|desc|symbol|tf|leverage|interval> <value>"); err != nil {
		return "", err
	}
	field, value := strings.ToLower(args[0]), strings.Join(args[1:], " ")

	// инструмент по inst_id ищем до захвата сессии, это запрос во внешний справочник
	var symbolID int64
	if field == "symbol" {
		id, err := c.resolveSymbol(ctx, value)
		if err != nil {
			return "", err
		}
		symbolID = id
	}

	s := c.session(chatID)
	s.mu.Lock()
	defer s.mu.Unlock()

	switch field {
	case "name":
		s.meta.Name = value
	case "desc":
		s.meta.Description = value
	case "symbol":
		s.meta.SymbolID = symbolID
	case "tf":
		tf := models.Timeframe(value)
		if !tf.Valid() {
			return "", fmt.Errorf("таймфрейм должен быть одним из %v", models.Timeframes)
		}
		s.meta.Timeframe = tf
	case "leverage":
		v, err := parseFloat(value)
		if err != nil {
			return "", err
		}
		if v < 1 || v > saver.MaxLeverage {
			return "", fmt.Errorf("плечо должно быть от 1 до %s", f2(saver.MaxLeverage))
		}
		s.meta.Leverage = v
	case "interval":
		v, err := strconv.Atoi(value)
		if err != nil || v < 1 {
			return "", fmt.Errorf("интервал в секундах, не меньше 1: %q", value)
		}
		s.meta.MonitorIntervalSec = v
	default:
		return "", fmt.Errorf("неизвестное поле %q", field)
	}
	return "📝 " + formatMeta(s.meta), nil
}

// resolveSymbol принимает id инструмента или его inst_id (BTC-USDT-SWAP).
func (c *Commander) resolveSymbol(ctx context.Context, v string) (int64, error) {
	if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
		return id, nil
	}
	symbols, err := c.store.ListSymbols(ctx)
	if err != nil {
		return 0, fmt.Errorf("не удалось получить инструменты: %w", err)
	}
	for _, sym := range symbols {
		if strings.EqualFold(sym.InstID, v) {
			return sym.ID, nil
		}
	}
	return 0, fmt.Errorf("инструмент %q не найден, см. /symbols", v)
}

// cmdLoad открывает сохранённую стратегию на редактирование; следующий /save обновит её.
func (c *Commander) cmdLoad(ctx context.Context, chatID int64, args []string) (string, error) {
	if err := wantArgs(args, 1, "/load <id>"); err != nil {
		return "", err
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id < 1 {
		return "", fmt.Errorf("id стратегии должен быть числом: %q", args[0])
	}

	rec, err := c.store.Get(ctx, id)
	if err != nil {
		return "", fmt.Errorf("не удалось загрузить стратегию %d: %w", id, err)
	}
	cfg, err := builder.Parse(rec.ConfigJSON)
	if err != nil {
		return "", fmt.Errorf("стратегия %d: %w", id, err)
	}
	b, err := builder.LoadBuilder(c.catalog, cfg)
	if err != nil {
		return "", fmt.Errorf("стратегия %d: %w", id, err)
	}

	s := &Session{
		builder: b,
		meta: saver.StrategyMeta{
			Name:               rec.Name,
			Description:        rec.Description,
			SymbolID:           rec.SymbolID,
			Timeframe:          rec.Timeframe,
			Leverage:           rec.Leverage,
			MonitorIntervalSec: rec.MonitorIntervalSec,
		},
		save: c.saver.NewSession(rec.ID),
	}
	c.replaceSession(chatID, s)
	return "📂 " + formatSession(s, c.catalog, c.validator), nil
}

// cmdSave валидирует сразу, а отправку запускает в фоне: новый /save вытесняет незавершённый.
func (c *Commander) cmdSave(ctx context.Context, chatID int64, reply Reply) {
	s := c.session(chatID)
	s.mu.Lock()
	meta := s.meta
	state := s.builder.State()
	session := s.save
	s.mu.Unlock()

	if vs := c.validator.Validate(state); len(vs) > 0 {
		metrics.Saves.WithLabelValues("invalid").Inc()
		reply(formatViolations(vs))
		return
	}
	if err := meta.WithDefaults().Validate(); err != nil {
		metrics.Saves.WithLabelValues("invalid").Inc()
		reply("❗️ " + err.Error())
		return
	}

	c.saves.Add(1)
	go func() {
		defer c.saves.Done()
		rec, err := session.Save(ctx, meta, state)
		switch {
		case errors.Is(err, saver.ErrSuperseded):
			metrics.Saves.WithLabelValues("superseded").Inc()
			return
		case err != nil:
			metrics.Saves.WithLabelValues("error").Inc()
			c.touchSave(err)
			reply("❌ Не удалось сохранить: " + err.Error())
		default:
			metrics.Saves.WithLabelValues("ok").Inc()
			c.touchSave(nil)
			reply(fmt.Sprintf("✅ Стратегия #%d «%s» сохранена", rec.ID, rec.Name))
		}
	}()
}

func (c *Commander) touchSave(err error) {
	if c.state != nil {
		c.state.TouchSave(time.Now(), err)
	}
}

func (c *Commander) conditionLabel(cond models.Condition) string {
	return condLabel(c.catalog, cond)
}

const helpText = `Конструктор стратегий. Группы и условия нумеруются с 1.

/new — новая стратегия
/group <buy|sell> — добавить группу
/rmgroup <side> <g> — удалить группу
/add <side> [g] — добавить условие
/rm <side> <g> <c> — удалить условие
/logic <side> <g> <AND|OR> — логика группы
/ind <side> <g> <c> <TYPE> — индикатор условия
/sig <side> <g> <c> <SIGNAL> — сигнал условия
/param <side> <g> <c> <name> <value> — параметр
/unparam <side> <g> <c> <name> — вернуть значение по умолчанию
/indicators <side> — индикаторы
/signals <side> <TYPE> — сигналы индикатора
/symbols — инструменты
/meta <name|desc|symbol|tf|leverage|interval> <value>
/show — текущая стратегия
/json — config_json
/load <id> — открыть сохранённую
/save — сохранить`
