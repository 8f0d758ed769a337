package linebreak

import "errors"

var (
	// ErrEmptyParagraph 在 Format 遇到空的原子序列时返回。Finish 总会追加
	// 三个收尾原子，所以调用过 Finish 的段落（即使此前没有添加任何内容）
	// 不会得到该错误，而是被格式化为一行。
	ErrEmptyParagraph = errors.New("linebreak: 段落为空，没有可供断行的内容")

	// ErrAlreadyFinished 在对一个已经调用过 Finish 的段落重复调用
	// AddBox/AddGlue/AddOptionalHyphen/AddExplicitHyphen/Finish 时返回。
	ErrAlreadyFinished = errors.New("linebreak: 段落已经调用过 Finish，无法继续添加内容")

	// ErrNotFinished 在段落尚未调用 Finish 就调用 Format 时返回。
	ErrNotFinished = errors.New("linebreak: 段落尚未调用 Finish，不能开始断行")

	// ErrNoFeasibleBreaks 表示在给定的容差与行宽下，找不到任何一组
	// 完全合法的断点序列——通常是某一行里存在单个宽度就超过行宽、
	// 且前后都没有可行断点的盒子。
	ErrNoFeasibleBreaks = errors.New("linebreak: 在当前容差与行宽下无法找到可行的断点序列")

	// ErrNotFormatted 由 WriteText 在传入的 Result 为 nil 或不含任何行时
	// 返回。NumberOfLines/AdjustRatio/TotalDemerits/FitnessClassOf 等结果
	// 查询方法不返回错误：行号越界时返回各自的哨兵值。
	ErrNotFormatted = errors.New("linebreak: 尚未成功执行 Format，没有可查询的结果")
)

// FormatError 包在 ErrNoFeasibleBreaks 之外，附带发生失败时已经处理到
// 的原子下标，便于调用方定位是段落里的哪一段内容导致断行失败。
type FormatError struct {
	Err       error
	AtomIndex int
}

func (e *FormatError) Error() string {
	return e.Err.Error()
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
