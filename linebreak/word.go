package linebreak

// WordBox 是调用方提供的“一个词”的度量信息，供 Paragraph.AddWord 转换
// 为盒子/胶水原子序列使用。引擎本身完全不关心字符宽度表或语言相关的
// 度量规则，只依赖调用方通过该接口给出的数值。
type WordBox interface {
	// Width 返回这个词本身（不含其后空白）的宽度。
	Width() int

	// TrailingGlue 返回紧跟在这个词之后的空白的胶水参数：自然宽度、
	// 最大可拉伸量、最大可收缩量。段落末尾的词可以返回全零，
	// Finish 会在需要时补上收尾胶水。
	TrailingGlue() (width, stretch, shrink int)
}

// SimpleWord 是 WordBox 的一个直接实现，供不需要自定义度量逻辑的
// 调用方直接使用。
type SimpleWord struct {
	W                                  int
	GlueWidth, GlueStretch, GlueShrink int
}

// Width 实现 WordBox。
func (w SimpleWord) Width() int { return w.W }

// TrailingGlue 实现 WordBox。
func (w SimpleWord) TrailingGlue() (int, int, int) {
	return w.GlueWidth, w.GlueStretch, w.GlueShrink
}
