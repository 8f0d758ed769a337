package linebreak

import "math"

// 整数哨兵值，对应原始实现中的 INT_MAX/4、INT_MIN/4：远大于任何实际会
// 出现的宽度/劣质度累加值，但留出足够余量做加法而不溢出。
const (
	PlusInfinity  = math.MaxInt32 / 4
	MinusInfinity = math.MinInt32 / 4
)

// 调整比例（adjustment ratio）的浮点哨兵。
//
// RatioPlusInfinity 表示“需要无穷大的拉伸”：某一行比期望宽度短，但该行
// 的胶水完全没有可伸展空间。
//
// RatioMinusInfinity 表示“需要无穷大的收缩”：该行比期望宽度长，但完全
// 没有可收缩空间。上游 troff 源码此处赋的字面常量是 FLT_MIN（一个接近
// 于 0 的极小正数，而非其字面意图的“负无穷”），会让一整行找不到收缩空间
// 时反而被判定为几乎完美的断点——这与算法说明里“无法收缩即不可行”的用意
// 相悖，也会让单个超宽盒子的段落错误地格式化成功。这里按其表达的语义取
// 真正的负无穷，使不可行的行在可行性检查与劣质度计算中都被正确地拒绝。
const (
	RatioPlusInfinity  = math.MaxFloat64
	RatioMinusInfinity = -math.MaxFloat64
)
