package util

import (
	"math"

	"golang.org/x/exp/rand"
)

func RoundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// BinarySearch. index of target in the sorted arr, or the position where target would be inserted to keep arr sorted.
// for runs of equal elements, any index inside the run may be returned.
func BinarySearch[T any](arr []T, target T, compare func(a, b T) int) int {
	left := 0
	right := len(arr) - 1
	for left <= right {
		mid := left + (right-left)/2
		c := compare(arr[mid], target)
		if c > 0 {
			right = mid - 1
		} else if c < 0 {
			left = mid + 1
		} else {
			return mid
		}
	}
	return left
}

// UpperBound. first index i such that compare(arr[i], target) > 0, or len(arr).
// inserting at UpperBound places target after every element equal to it.
func UpperBound[T any](arr []T, target T, compare func(a, b T) int) int {
	left, right := 0, len(arr)
	for left < right {
		mid := left + (right-left)/2
		if compare(arr[mid], target) > 0 {
			right = mid
		} else {
			left = mid + 1
		}
	}
	return left
}

func generateRandomInt(min, max int) int {
	return min + rand.Intn(max-min)
}

func QuickSortG[T any](arr []T, compare func(a, b T) int) []T {
	copyArr := make([]T, len(arr)) // should do on the copy )
	copy(copyArr, arr)
	return QuickSort(copyArr, 0, len(arr)-1, compare)
}

func QuickSort[T any](arr []T, low, high int, compare func(a, b T) int) []T {
	if low < high {
		pivotIndex := generateRandomInt(low, high)
		pivotValue := arr[pivotIndex]

		arr[pivotIndex], arr[high] = arr[high], arr[pivotIndex]

		i := low - 1

		for j := low; j < high; j++ {
			if compare(arr[j], pivotValue) < 0 {
				i++
				arr[i], arr[j] = arr[j], arr[i]
			}
		}

		arr[i+1], arr[high] = arr[high], arr[i+1]

		QuickSort(arr, low, i, compare)
		QuickSort(arr, i+2, high, compare)
	}
	return arr
}

func CompareFloat64(a, b float64) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}
