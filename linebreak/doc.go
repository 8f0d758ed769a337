// Package linebreak 实现 Knuth-Plass 最优断行算法：给定一段由盒子（box）、
// 胶水（glue）与罚值（penalty）组成的原子序列，在容差范围内挑选一组断点，
// 使总的“劣质度”（demerits）之和最小，并为每一行计算拉伸/收缩调整比例，
// 供调用方据此完成两端对齐排版。
//
// 引擎本身与字符宽度表、连字符词典、字形渲染完全无关：调用方通过 WordBox
// 接口提供词的宽度与词后空白的胶水参数，通过 Writer 接口接收逐词/逐空格/
// 逐行的回调。
package linebreak
